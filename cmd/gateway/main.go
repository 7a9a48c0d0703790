package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"

	"github.com/warmstorage/client-backend/cmd/flags"
	wscommon "github.com/warmstorage/client-backend/common"
	"github.com/warmstorage/client-backend/httpserver"
	"github.com/warmstorage/client-backend/interfaces"
	"github.com/warmstorage/client-backend/metrics"
	"github.com/warmstorage/client-backend/piececache"
	"github.com/warmstorage/client-backend/registry"
	"github.com/warmstorage/client-backend/retrieval"
	"github.com/warmstorage/client-backend/state"
)

var cliFlags = append([]cli.Flag{
	flags.RpcAddrFlag,
	flags.ContractAddrFlag,
	flags.ListenAddrFlag,
	flags.CacheDirFlag,
	flags.IpfsApiFlag,
	flags.S3BucketFlag,
	flags.S3PrefixFlag,
	flags.S3RegionFlag,
	flags.S3EndpointFlag,
	flags.LogServiceFlagFn("warm-storage-gateway"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "gateway",
		Usage: "Serve the warm-storage client API: provider selection and piece retrieval",
		Flags: cliFlags,
		Action: func(cCtx *cli.Context) error {
			rpcAddress := cCtx.String("rpc-addr")
			contractHex := cCtx.String("contract-addr")
			listenAddr := cCtx.String("listen-addr")
			cacheDir := cCtx.String("cache-dir")
			ipfsAPI := cCtx.String("ipfs-api")
			s3Bucket := cCtx.String("s3-bucket")

			logger := flags.SetupLogger(cCtx)

			if !common.IsHexAddress(contractHex) {
				logger.Error("Invalid contract address", "address", contractHex)
				return fmt.Errorf("invalid contract address: %s", contractHex)
			}
			contractAddr := common.HexToAddress(contractHex)

			logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
			ethClient, err := ethclient.Dial(rpcAddress)
			if err != nil {
				logger.Error("Failed to dial RPC", "err", err)
				return err
			}

			registryClient := registry.NewClient(ethClient, contractAddr)

			metricsSrv, err := metrics.New(wscommon.PackageName, cCtx.String("metrics-addr"))
			if err != nil {
				logger.Error("Failed to create metrics server", "err", err)
				return err
			}

			// Build the retrieval chain tail-first: S3 mirror, then IPFS,
			// then the provider network, with the local cache at the head.
			var tail interfaces.PieceRetriever
			if s3Bucket != "" {
				s3Retriever, err := retrieval.NewS3MirrorRetriever(
					s3Bucket,
					cCtx.String("s3-prefix"),
					cCtx.String("s3-region"),
					cCtx.String("s3-endpoint"),
					nil, logger)
				if err != nil {
					logger.Error("Failed to create S3 mirror retriever", "err", err)
					return err
				}
				tail = s3Retriever
				logger.Info("S3 mirror tier enabled", "bucket", s3Bucket)
			}
			if ipfsAPI != "" {
				tail = retrieval.NewIPFSRetriever(ipfsAPI, tail, logger)
				logger.Info("IPFS fallback tier enabled", "api", ipfsAPI)
			}

			prober := retrieval.NewHTTPProber(nil, logger)
			var head interfaces.PieceRetriever = retrieval.NewChainRetriever(registryClient, prober, tail, logger)

			if cacheDir != "" {
				store, err := piececache.Open(cacheDir, logger)
				if err != nil {
					logger.Error("Failed to open piece cache", "err", err, "dir", cacheDir)
					return err
				}
				defer store.Close()
				head = piececache.NewCachingRetriever(store, head, logger)
				logger.Info("Local piece cache enabled", "dir", cacheDir)
			}

			assembler := state.NewAssembler(registryClient, logger)
			handler := httpserver.NewHandler(assembler, head, metricsSrv, logger)

			cfg := flags.ConfigureServer(cCtx, logger, listenAddr)
			server, err := httpserver.New(cfg, handler, metricsSrv)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
