// Command cardiogo runs the heart-disease analysis pipeline end to end:
// download, explore, binarize, split, rebalance, train, cross-validate and
// evaluate, printing the report to stdout.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	"github.com/cardiogo/cardiogo/pipeline"
	"github.com/cardiogo/cardiogo/pkg/errors"
	"github.com/cardiogo/cardiogo/pkg/log"
)

func main() {
	log.SetupLogger("info")

	// warnings (missing-value conversions, undefined metrics) go through
	// zerolog as structured events
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	errors.SetZerologWarnFunc(func(warning error) {
		ev := zl.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(obj)
		}
		ev.Msg(warning.Error())
	})

	cfg := pipeline.DefaultConfig()
	result, err := pipeline.Run(context.Background(), cfg)
	if err != nil {
		slog.Error("pipeline failed", log.ErrAttr(err))
		os.Exit(1)
	}
	result.Print(os.Stdout)
}
