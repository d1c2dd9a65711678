// Command gagyebu-pin registers a PIN with the configured backend. The PIN
// is read from the first line of standard input unless -pin is given.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gagyebu/internal/cli"
	"gagyebu/internal/digest"
	"gagyebu/internal/log"
)

func main() {
	pin := flag.String("pin", "", "PIN to register (read from stdin when empty)")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	value := strings.TrimSpace(*pin)
	if value == "" {
		fmt.Fprint(os.Stderr, "PIN: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Error("Failed to read PIN", log.FieldError, err)
			os.Exit(1)
		}
		value = strings.TrimSpace(line)
	}
	if value == "" {
		logger.Error("Empty PIN")
		os.Exit(2)
	}

	hash := digest.SHA256Hex(value)
	if cfg.DataBackend == "memory" {
		// Nothing to write to; the memory store seeds from this file.
		fmt.Println(hash)
		logger.Info("Memory backend: append the hash to the seed file",
			"path", filepath.Join(cfg.DataDir, "seed_pin_hashes.txt"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	res := cli.InitBackend(ctx, logger, cfg)

	err := res.Backend.AddPinHash(ctx, hash)
	cancel()
	cli.CloseBackend(logger, res)
	if err != nil {
		logger.Error("Failed to store PIN hash", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("PIN registered", "backend", cfg.DataBackend)
}
