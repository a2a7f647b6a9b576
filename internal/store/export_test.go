package store

import "MarketSeries/internal/model"

// ForceInsert bypasses Create's duplicate check to simulate a corrupted store.
func (s *Store) ForceInsert(id model.Identity) *model.Series {
	series := model.NewSeries(id)
	s.insert(series)
	return series
}
