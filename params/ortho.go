package params

// OrthoConfig bundles everything one imagery source needs end to end:
// where it fetches from, how hard it may fetch, what gets cached, how
// levels are scanned, and where outputs land.
type OrthoConfig struct {
	DataDir   string
	Source    *TileSourceConfig
	Fetch     *FetchConfig
	Cache     *CacheConfig
	Retriever *RetrieverConfig
}

func DefaultOrthoConfig() *OrthoConfig {
	return &OrthoConfig{
		DataDir:   DefaultDatadirRoot,
		Source:    DefaultTileSourceConfig(),
		Fetch:     DefaultFetchConfig(),
		Cache:     DefaultCacheConfig(),
		Retriever: DefaultRetrieverConfig(),
	}
}
