package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

// SetData stores data under key as indented JSON
func SetData[T any](ctx context.Context, s *Store, key string, data T) error {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.SetString(ctx, key, string(encoded))
}

// GetData decodes the JSON stored under key. A missing or empty key yields
// the zero value and false.
func GetData[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var data T
	raw, ok, err := s.GetString(ctx, key)
	if err != nil || !ok || raw == "" {
		return data, false, err
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return data, false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return data, true, nil
}

// GetList returns the list stored under key, or an empty list
func GetList[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	list, _, err := GetData[[]T](ctx, s, key)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// SetList replaces the list stored under key
func SetList[T any](ctx context.Context, s *Store, key string, list []T) error {
	return SetData(ctx, s, key, list)
}

// AddToList appends item to the list stored under key
func AddToList[T any](ctx context.Context, s *Store, key string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := GetList[T](ctx, s, key)
	if err != nil {
		return err
	}
	return SetList(ctx, s, key, append(list, item))
}

// RemoveFromList removes every item of the list under key for which match
// returns true, and reports whether anything was removed
func RemoveFromList[T any](ctx context.Context, s *Store, key string, match func(T) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeLocked(ctx, s, key, match)
}

func removeLocked[T any](ctx context.Context, s *Store, key string, match func(T) bool) (bool, error) {
	list, err := GetList[T](ctx, s, key)
	if err != nil {
		return false, err
	}
	kept := list[:0]
	for _, item := range list {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}
	return true, SetList(ctx, s, key, kept)
}
