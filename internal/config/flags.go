package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a local HTTP API address in format [host]:[port]
//	-d queue database DSN (SQLite file path)
//	-docstore-address document store base URL
//	-docstore-token document store service token
//	-c/-config json file path with configs
//	-device-id stable device identifier
//	-device-name human-readable device name
//	-device-platform platform label (ios, android, web, ...)
//	-document-window conflict window for document edits (e.g. "10s")
//	-interaction-window conflict window for interaction records (e.g. "30s")
//	-retention-window resolved-conflict retention (e.g. "720h")
//	-max-attempts transient retry bound per operation
//	-drain-interval queue drain period (e.g. "1m")
//	-sweep-interval retention sweeper period (e.g. "24h")
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var queueDSN string
	var docStoreAddress string
	var docStoreToken string
	var jsonConfigPath string
	var deviceID, deviceName, devicePlatform string
	var documentWindow, interactionWindow, retentionWindow time.Duration
	var maxAttempts, sweepBatchSize int
	var drainInterval, sweepInterval time.Duration
	var requestTimeout time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&queueDSN, "d", "", "Queue database DSN")
	flag.StringVar(&docStoreAddress, "docstore-address", "", "Document store base URL")
	flag.StringVar(&docStoreToken, "docstore-token", "", "Document store service token")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&deviceID, "device-id", "", "Stable device identifier")
	flag.StringVar(&deviceName, "device-name", "", "Human-readable device name")
	flag.StringVar(&devicePlatform, "device-platform", "", "Device platform label")
	flag.DurationVar(&documentWindow, "document-window", 0, "Document conflict window (e.g., 10s)")
	flag.DurationVar(&interactionWindow, "interaction-window", 0, "Interaction conflict window (e.g., 30s)")
	flag.DurationVar(&retentionWindow, "retention-window", 0, "Resolved-conflict retention (e.g., 720h)")
	flag.IntVar(&maxAttempts, "max-attempts", 0, "Transient retry bound per operation")
	flag.IntVar(&sweepBatchSize, "sweep-batch-size", 0, "Sweeper delete batch size")
	flag.DurationVar(&drainInterval, "drain-interval", 0, "Queue drain period (e.g., 1m)")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Retention sweep period (e.g., 24h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Document store request timeout (e.g., 15s)")

	flag.Parse()

	return &StructuredConfig{
		Device: Device{
			ID:       deviceID,
			Name:     deviceName,
			Platform: devicePlatform,
		},
		Storage: Storage{
			DB: QueueDB{
				DSN: queueDSN,
			},
			DocStore: DocStore{
				HTTPAddress:    docStoreAddress,
				ServiceToken:   docStoreToken,
				RequestTimeout: requestTimeout,
			},
		},
		Sync: Sync{
			DocumentWindow:    documentWindow,
			InteractionWindow: interactionWindow,
			RetentionWindow:   retentionWindow,
			MaxAttempts:       maxAttempts,
			SweepBatchSize:    sweepBatchSize,
		},
		Server: Server{
			HTTPAddress: serverAddress.String(),
		},
		Workers: Workers{
			DrainInterval: drainInterval,
			SweepInterval: sweepInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
