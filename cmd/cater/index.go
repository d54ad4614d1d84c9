package main

import (
	"github.com/sandevgo/caterbot/internal/config"
	"github.com/sandevgo/caterbot/internal/providers/rag"
	"github.com/sandevgo/caterbot/internal/service/catalog"
	"github.com/sandevgo/caterbot/internal/storage/sqlite"
	"github.com/sandevgo/caterbot/pkg/log"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the catalog search index",
	Long:  `Reads the product and service CSV exports, chunks and embeds each entry, and stores the vectors for semantic search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}

		appCfg := config.NewAppConfig(ctx)
		retrievalCfg := config.NewRetrievalConfig(ctx)

		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		defer db.Close()

		embedder, err := rag.NewEmbedder(retrievalCfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize embedder")
		}

		docs := catalog.LoadDocuments(ctx, appCfg.GetProductsCSVPath(), appCfg.GetServicesCSVPath())
		if len(docs) == 0 {
			logger.Warn().Msg("no catalog documents found, nothing to index")
			return nil
		}

		indexer := catalog.NewIndexer(embedder, sqlite.NewCatalogRepo(db))
		written, err := indexer.Index(ctx, docs)
		if err != nil {
			logger.Fatal().Err(err).Int("written", written).Msg("indexing failed")
		}

		logger.Info().Int("chunks", written).Msg("catalog index rebuilt")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
