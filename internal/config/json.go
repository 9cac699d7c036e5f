package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations, so operators can keep a readable config file.
type StructuredJSONConfig struct {
	Device struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Platform string `json:"platform"`
	} `json:"device,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		DocStore struct {
			HTTPAddress    string   `json:"address"`
			ServiceToken   string   `json:"service_token"`
			RequestTimeout Duration `json:"request_timeout"`
		} `json:"docstore,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		DocumentWindow    Duration `json:"document_window"`
		InteractionWindow Duration `json:"interaction_window"`
		RetentionWindow   Duration `json:"retention_window"`
		MaxAttempts       int      `json:"max_attempts"`
		SweepBatchSize    int      `json:"sweep_batch_size"`
	} `json:"sync,omitempty"`

	Server struct {
		HTTPAddress string `json:"http_address"`
	} `json:"server,omitempty"`

	Workers struct {
		DrainInterval Duration `json:"drain_interval"`
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Device: Device{
			ID:       jsonCfg.Device.ID,
			Name:     jsonCfg.Device.Name,
			Platform: jsonCfg.Device.Platform,
		},
		Storage: Storage{
			DB: QueueDB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			DocStore: DocStore{
				HTTPAddress:    jsonCfg.Storage.DocStore.HTTPAddress,
				ServiceToken:   jsonCfg.Storage.DocStore.ServiceToken,
				RequestTimeout: time.Duration(jsonCfg.Storage.DocStore.RequestTimeout),
			},
		},
		Sync: Sync{
			DocumentWindow:    time.Duration(jsonCfg.Sync.DocumentWindow),
			InteractionWindow: time.Duration(jsonCfg.Sync.InteractionWindow),
			RetentionWindow:   time.Duration(jsonCfg.Sync.RetentionWindow),
			MaxAttempts:       jsonCfg.Sync.MaxAttempts,
			SweepBatchSize:    jsonCfg.Sync.SweepBatchSize,
		},
		Server: Server{
			HTTPAddress: jsonCfg.Server.HTTPAddress,
		},
		Workers: Workers{
			DrainInterval: time.Duration(jsonCfg.Workers.DrainInterval),
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
