package services

import (
	"context"

	"campuspulse-backend/application/ports"
)

// DrainPages pulls every record of a listing by walking limit/offset
// pages until a short page signals the end. A max cap of 0 means
// unbounded.
func DrainPages[T any](
	ctx context.Context,
	pageSize int,
	max int,
	fetch func(ctx context.Context, opts ports.ListOptions) ([]T, error),
	base ports.ListOptions,
) ([]T, error) {
	var out []T
	offset := 0

	for {
		opts := base
		opts.Limit = pageSize
		opts.Offset = offset

		page, err := fetch(ctx, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)

		if max > 0 && len(out) >= max {
			return out[:max], nil
		}
		if len(page) < pageSize {
			return out, nil
		}
		offset += pageSize
	}
}
