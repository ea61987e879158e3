// Package config loads keymark settings.
//
// Settings are layered, lowest priority first:
//
//	┌─────────────────────────────┐
//	│  3. Environment (KEYMARK_*) │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config file (TOML/YAML) │  ← ~/.config/keymark/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │
//	└─────────────────────────────┘
//
// The merged map is decoded into a typed Config and validated.
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	mode := cfg.ThemeMode()
package config
