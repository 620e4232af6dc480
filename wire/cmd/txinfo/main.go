package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/tokenized/config"
	"github.com/tokenized/logger"

	"github.com/SequentiaSEQ/sequentia-lib/wire"
)

type Config struct {
	// NonStrict tolerates trailing bytes after the transaction.
	NonStrict bool `default:"false" envconfig:"NON_STRICT" json:"non_strict"`
}

func main() {
	ctx := logger.ContextWithLogger(context.Background(), true, true, "")

	cfg := &Config{}
	if err := config.LoadConfig(ctx, cfg); err != nil {
		logger.Fatal(ctx, "Failed to load config : %s", err)
	}

	if len(os.Args) < 3 {
		logger.Fatal(ctx, "Not enough arguments. Need command (decode, hash) and tx hex")
	}

	switch os.Args[1] {
	case "decode":
		Decode(ctx, cfg, os.Args[2])
	case "hash":
		Hash(ctx, cfg, os.Args[2])
	default:
		logger.Fatal(ctx, "Unknown command : %s", os.Args[1])
	}
}

// Decode parses a transaction and prints its contents.
func Decode(ctx context.Context, cfg *Config, arg string) {
	tx, err := parseTx(cfg, arg)
	if err != nil {
		logger.Fatal(ctx, "Failed to parse tx : %s", err)
	}

	fmt.Printf("%s\n", tx)
	fmt.Printf("WTxId: %s\n", tx.WitnessHash())
	fmt.Printf("Base size: %d, total size: %d, weight: %d, virtual size: %d\n", tx.BaseSize(),
		tx.SerializeSize(), tx.Weight(), tx.VirtualSize())
}

// Hash parses a transaction and prints only its ids.
func Hash(ctx context.Context, cfg *Config, arg string) {
	tx, err := parseTx(cfg, arg)
	if err != nil {
		logger.Fatal(ctx, "Failed to parse tx : %s", err)
	}

	fmt.Printf("TxId: %s\n", tx.TxHash())
	fmt.Printf("WTxId: %s\n", tx.WitnessHash())
}

func parseTx(cfg *Config, arg string) (*wire.MsgTx, error) {
	b, err := hex.DecodeString(arg)
	if err != nil {
		return nil, err
	}

	if cfg.NonStrict {
		return wire.DeserializeTxNonStrict(b)
	}

	return wire.DeserializeTx(b)
}
