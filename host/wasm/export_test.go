package wasm

import "context"

// CallExport invokes symbol directly, letting tests hand the free exports
// pointers the typed methods never pass.
func (l *Library) CallExport(ctx context.Context, symbol string, params ...uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.call(ctx, symbol, params...)
}

// PlaceArray writes members into guest memory and returns the IntArray
// address with a func that releases it.
func (l *Library) PlaceArray(ctx context.Context, members []int32) (uint32, func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.scratch()
	array, err := s.putArray(ctx, members)
	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		s.release(ctx)
	}
	if err != nil {
		s.release(ctx)
		return 0, nil, err
	}
	return array, release, nil
}
