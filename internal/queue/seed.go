package queue

// DefaultSeed returns the post-transfer maintenance pipeline: nine jobs in
// priority order, import first and the service refresh last.
func DefaultSeed() []SeedSpec {
	return []SeedSpec{
		{Type: TypeBeetsImport, Priority: 1},
		{Type: TypeFixFeaturedArtists, Priority: 2},
		{Type: TypeWriteMetadata, Priority: 3},
		{Type: TypeMoveFiles, Priority: 4},
		{Type: TypeCatalogResearch, Priority: 5},
		{Type: TypeFetchLyrics, Priority: 6},
		{Type: TypeFetchCDScans, Priority: 7},
		{Type: TypeFetchAnimatedCovers, Priority: 8},
		{Type: TypeRefreshNavidrome, Priority: 9},
	}
}
