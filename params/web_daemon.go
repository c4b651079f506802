package params

type WebDaemonConfig struct {
	ListenerConfig
	*OrthoConfig
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	ortho := DefaultOrthoConfig()
	ortho.Cache.Persistent = true
	return &WebDaemonConfig{
		ListenerConfig: DefaultWebListenerConfig(),
		OrthoConfig:    ortho,
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	ortho := DefaultOrthoConfig()
	ortho.DataDir = ""
	return &WebDaemonConfig{
		ListenerConfig: ListenerConfig{
			Network: "tcp",
			Address: "localhost:3333",
		},
		OrthoConfig: ortho,
	}
}
