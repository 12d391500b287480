package service

import (
	"context"
	"errors"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/types"
)

// descriptorSuffix is appended to a dataset key to address its descriptor.
const descriptorSuffix = ".meta"

func descriptorKey(key string) string {
	return key + descriptorSuffix
}

func (s *Service) putDescriptor(ctx context.Context, key string, d types.Descriptor) error {
	data, err := msgpack.Marshal(&d)
	if err != nil {
		return errs.New(errs.ErrIO, "put_descriptor", key, err)
	}
	return s.store.PutObject(ctx, descriptorKey(key), data)
}

// getDescriptor returns the descriptor for key, or nil for datasets
// stored without one. An undecodable descriptor is logged and ignored.
func (s *Service) getDescriptor(ctx context.Context, key string) (*types.Descriptor, error) {
	data, err := s.store.GetObject(ctx, descriptorKey(key))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var d types.Descriptor
	if err := msgpack.Unmarshal(data, &d); err != nil {
		s.logger.Warn("ignoring unreadable descriptor", map[string]any{"key": key, "error": err.Error()})
		return nil, nil
	}
	if d.FormatVersion > types.FormatVersion {
		s.logger.Warn("ignoring descriptor from newer format", map[string]any{
			"key":            key,
			"format_version": d.FormatVersion,
		})
		return nil, nil
	}
	return &d, nil
}
