// Package catalog reads protocol and token descriptors from a
// directory of JSON files and upserts them into the Store (spec.md
// §4.3), grounded on the teacher's directory-of-JSON-descriptors
// loading style (internal/modules/universe).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/car-engine/internal/domain"
	"github.com/aristath/car-engine/internal/store"
)

// Loader reads data/protocols/*.json and data/tokens/*.json and
// upserts their contents into the Store.
type Loader struct {
	store        *store.Store
	protocolsDir string
	tokensDir    string
	log          zerolog.Logger
}

// NewLoader builds a catalog Loader rooted at the given directories.
func NewLoader(s *store.Store, protocolsDir, tokensDir string, log zerolog.Logger) *Loader {
	return &Loader{
		store:        s,
		protocolsDir: protocolsDir,
		tokensDir:    tokensDir,
		log:          log.With().Str("component", "catalog").Logger(),
	}
}

type protocolFile struct {
	Rating    string      `json:"rating"`
	Treasury  []string    `json:"treasury"`
	Addresses []string    `json:"addresses"`
	Hacks     []hackEntry `json:"hacks"`
}

type hackEntry struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type tokenFile struct {
	Protocol   string  `json:"protocol"`
	Symbol     string  `json:"symbol"`
	ITIN       string  `json:"itin"`
	Decimals   int     `json:"decimals"`
	ITCEEP     *string `json:"itc_eep"`
	Underlying *string `json:"underlying"`
}

// Load runs one full catalog pass: protocols (and their treasuries)
// first, then tokens, each upserted idempotently (spec.md §4.3). Run
// on startup and on every daily snapshot-update pass.
func (l *Loader) Load(ctx context.Context) error {
	if err := l.loadProtocols(ctx); err != nil {
		return fmt.Errorf("load protocols: %w", err)
	}
	if err := l.loadTokens(ctx); err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	return nil
}

func (l *Loader) loadProtocols(ctx context.Context) error {
	entries, err := os.ReadDir(l.protocolsDir)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Warn().Str("dir", l.protocolsDir).Msg("protocols directory missing, skipping")
			return nil
		}
		return fmt.Errorf("read dir %s: %w", l.protocolsDir, err)
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		protocolID := strings.ToLower(strings.TrimSuffix(entry.Name(), ".json"))

		raw, err := os.ReadFile(filepath.Join(l.protocolsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var pf protocolFile
		if err := json.Unmarshal(raw, &pf); err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}

		addresses := lowerUnion(pf.Treasury, pf.Addresses)
		hacks := make([]domain.HackEvent, 0, len(pf.Hacks))
		for _, h := range pf.Hacks {
			d, err := time.Parse("2006-01-02", h.Date)
			if err != nil {
				l.log.Warn().Str("protocol", protocolID).Str("date", h.Date).Msg("unparseable hack date, skipping")
				continue
			}
			hacks = append(hacks, domain.HackEvent{Date: d, Amount: h.Amount})
		}

		protocol := domain.Protocol{
			ID:        protocolID,
			Rating:    domain.Rating(strings.ToUpper(pf.Rating)),
			Addresses: addresses,
			Hacks:     hacks,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := l.store.UpsertProtocol(ctx, protocol); err != nil {
			return fmt.Errorf("upsert protocol %s: %w", protocolID, err)
		}

		for _, treasury := range pf.Treasury {
			t := domain.Treasury{
				ID:         strings.ToLower(treasury),
				ProtocolID: protocolID,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := l.store.UpsertTreasury(ctx, t); err != nil {
				return fmt.Errorf("upsert treasury %s: %w", treasury, err)
			}
		}
	}
	return nil
}

func (l *Loader) loadTokens(ctx context.Context) error {
	entries, err := os.ReadDir(l.tokensDir)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Warn().Str("dir", l.tokensDir).Msg("tokens directory missing, skipping")
			return nil
		}
		return fmt.Errorf("read dir %s: %w", l.tokensDir, err)
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		tokenID := strings.ToLower(strings.TrimSuffix(entry.Name(), ".json"))

		raw, err := os.ReadFile(filepath.Join(l.tokensDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var tf tokenFile
		if err := json.Unmarshal(raw, &tf); err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}

		var itcEEP string
		if tf.ITCEEP != nil {
			itcEEP = *tf.ITCEEP
		}
		var underlying *string
		if tf.Underlying != nil {
			lowered := strings.ToLower(*tf.Underlying)
			underlying = &lowered
		}

		token := domain.Token{
			ID:         tokenID,
			ProtocolID: strings.ToLower(tf.Protocol),
			Symbol:     tf.Symbol,
			ITIN:       tf.ITIN,
			ITCEEP:     itcEEP,
			Underlying: underlying,
			Decimals:   tf.Decimals,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := l.store.UpsertToken(ctx, token); err != nil {
			return fmt.Errorf("upsert token %s: %w", tokenID, err)
		}
	}
	return nil
}

func lowerUnion(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, group := range [][]string{a, b} {
		for _, addr := range group {
			lowered := strings.ToLower(addr)
			if _, ok := seen[lowered]; ok {
				continue
			}
			seen[lowered] = struct{}{}
			out = append(out, lowered)
		}
	}
	return out
}
