package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
	"github.com/urfave/cli/v2"

	"github.com/warmstorage/client-backend/api/clients"
	"github.com/warmstorage/client-backend/cmd/flags"
	"github.com/warmstorage/client-backend/interfaces"
)

var cliFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "gateway-addr",
		Value: "http://127.0.0.1:8080",
		Usage: "base URL of the gateway to fetch through",
	},
	&cli.StringFlag{
		Name:     "client",
		Required: true,
		Usage:    "client address owning the data sets, 0x-prefixed hex",
	},
	&cli.StringFlag{
		Name:  "provider",
		Value: "",
		Usage: "force retrieval from a single provider by payee address",
	},
	&cli.StringFlag{
		Name:  "output",
		Value: "",
		Usage: "file to write the piece to; empty writes to stdout",
	},
	flags.LogJsonFlag,
	flags.LogDebugFlag,
	flags.LogUidFlag,
	flags.LogServiceFlagFn("warm-storage-retrieve"),
}

func main() {
	app := &cli.App{
		Name:      "retrieve",
		Usage:     "Fetch a single piece through a running gateway",
		ArgsUsage: "<piece-cid>",
		Flags:     cliFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			if cCtx.NArg() != 1 {
				return errors.New("expected exactly one piece CID argument")
			}

			pieceCID, err := cid.Decode(cCtx.Args().First())
			if err != nil {
				return fmt.Errorf("invalid piece CID: %w", err)
			}

			clientHex := cCtx.String("client")
			if !common.IsHexAddress(clientHex) {
				return fmt.Errorf("invalid client address: %s", clientHex)
			}

			var opts *interfaces.FetchOptions
			if providerHex := cCtx.String("provider"); providerHex != "" {
				if !common.IsHexAddress(providerHex) {
					return fmt.Errorf("invalid provider address: %s", providerHex)
				}
				opts = &interfaces.FetchOptions{ProviderAddress: common.HexToAddress(providerHex)}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gateway := &clients.GatewayClient{ServerAddr: cCtx.String("gateway-addr")}

			logger.Info("Fetching piece",
				"pieceCid", pieceCID.String(),
				"client", clientHex)

			data, err := gateway.FetchPiece(ctx, pieceCID, common.HexToAddress(clientHex), opts)
			if err != nil {
				logger.Error("Fetch failed", "err", err)
				return err
			}

			output := cCtx.String("output")
			if output == "" {
				if _, err := os.Stdout.Write(data); err != nil {
					return err
				}
			} else {
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("writing piece to %s: %w", output, err)
				}
			}

			logger.Info("Piece fetched",
				"pieceCid", pieceCID.String(),
				"size", len(data),
				"output", output)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
