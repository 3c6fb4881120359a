package storage

import "encoding/json"

const starredModeKeyPrefix = "gs_starred_model_mode"

// GetStarredMode returns the user's starred model mode, or "" when nothing
// is starred. The value is stored untyped; callers validate it against the
// known mode set and treat anything unrecognized as unstarred.
func (s *Service) GetStarredMode(user string) (string, error) {
	data, err := s.getRaw(starredModeKeyPrefix, user)
	if err != nil {
		return "", err
	}
	if data == nil {
		return "", nil
	}

	var mode *string
	if err := json.Unmarshal(data, &mode); err != nil || mode == nil {
		if err != nil {
			s.logger.Debug("discarding invalid starred mode")
		}
		return "", nil
	}
	return *mode, nil
}

// SetStarredMode stores the user's starred model mode. An empty mode
// clears the star.
func (s *Service) SetStarredMode(user, mode string) error {
	key := userKey(starredModeKeyPrefix, user)
	lock := s.lockKey(key)
	lock.Lock()
	defer lock.Unlock()

	var value *string
	if mode != "" {
		value = &mode
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.kv.Set(key, data)
}
