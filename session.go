package main

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/metcalfc/lumina/internal/config"
	"github.com/metcalfc/lumina/internal/observe"
	"github.com/metcalfc/lumina/internal/reader"
	"github.com/metcalfc/lumina/internal/state"
	"github.com/metcalfc/lumina/internal/store"
)

// session bundles what every reading command sets up: the logger, metrics
// and the loaded document with its resume position.
type session struct {
	settings  settings
	log       *slog.Logger
	metrics   *observe.Metrics
	doc       *reader.Document
	hash      string
	positions *state.StateStore
	history   *store.Store

	closers []func()
}

func openSession(flags flagSet, args []string, fromFlags settings, fresh bool) (*session, error) {
	s, err := loadSettings(flags, fromFlags)
	if err != nil {
		return nil, err
	}
	log, logFile, err := newLogger(s.logLevel, s.logFormat, s.logFile)
	if err != nil {
		return nil, err
	}
	sess := &session{settings: s, log: log}
	sess.closers = append(sess.closers, func() {
		if cerr := logFile.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	})

	mp, metricsReader := observe.NewManualProvider()
	otel.SetMeterProvider(mp)
	sess.metrics = observe.DefaultMetrics()
	sess.closers = append(sess.closers, func() {
		logTotals(context.Background(), log, metricsReader)
		_ = mp.Shutdown(context.Background())
	})

	sess.doc, err = loadDocument(args)
	if err != nil {
		sess.close()
		if errors.Is(err, errNoInput) {
			logErrln("Try: lumina -h")
		}
		return nil, err
	}
	sess.hash = state.HashText(sess.doc.Text())
	log.Info("lumina: loaded document", "title", sess.doc.Title, "sentences", sess.doc.Len(), "headings", len(sess.doc.TOC))

	sess.positions, err = state.NewStateStore(config.DefaultStateDir())
	if err != nil {
		log.Warn("lumina: reading positions unavailable", "err", err)
		sess.positions = nil
	} else if fresh {
		if err := sess.positions.Clear(sess.hash); err != nil {
			log.Warn("lumina: clear position", "err", err)
		}
	}

	sess.history, err = store.Open(config.DefaultDBPath())
	if err != nil {
		log.Warn("lumina: reading history unavailable", "err", err)
		sess.history = nil
	} else {
		sess.closers = append(sess.closers, func() {
			if cerr := sess.history.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		})
	}
	return sess, nil
}

// resume returns the sentence to start at.
func (s *session) resume() int {
	if s.positions == nil {
		return 0
	}
	return s.positions.GetPosition(s.hash, s.doc.Len())
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

