package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type StandardInput struct {
	StandardID          string      `json:"standardID" yaml:"standardID"`
	DocumentName        string      `json:"documentName" yaml:"documentName"`
	DocumentNameEnglish string      `json:"documentNameEnglish" yaml:"documentNameEnglish"`
	Scope               string      `json:"scope" yaml:"scope"`
	Terms               []TermInput `json:"terms" yaml:"terms"`
}

type TermInput struct {
	TermID      int          `json:"termID" yaml:"termID"`
	Term        string       `json:"term" yaml:"term"`
	TermEnglish string       `json:"termEnglish" yaml:"termEnglish"`
	Definition  string       `json:"definition" yaml:"definition"`
	Notes       []types.Note `json:"notes" yaml:"notes"`
}

type StandardService interface {
	List(ctx context.Context, withTerms bool) ([]*types.Standard, error)
	// Import stores every standard or none. Standard ids are compared with spaces removed.
	Import(ctx context.Context, in []StandardInput) (int, error)
	// ImportDocument decodes a YAML or JSON document holding one standard or a list of them.
	ImportDocument(ctx context.Context, r io.Reader) (int, error)
}

type standardService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.StandardRepo
}

// NewStandardService works against the business database.
func NewStandardService(db *gorm.DB, log *logger.Logger, repo repos.StandardRepo) StandardService {
	return &standardService{
		db:   db,
		log:  log.With("service", "StandardService"),
		repo: repo,
	}
}

func (ss *standardService) List(ctx context.Context, withTerms bool) ([]*types.Standard, error) {
	out, err := ss.repo.List(dbctx.Context{Ctx: ctx}, withTerms)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	for _, s := range out {
		if s.Terms == nil {
			s.Terms = []types.Term{}
		}
	}
	if out == nil {
		out = []*types.Standard{}
	}
	return out, nil
}

func (ss *standardService) Import(ctx context.Context, in []StandardInput) (int, error) {
	const op = "Reference.Standard.Import"
	if len(in) == 0 {
		return 0, invalid(op, "no standards supplied")
	}
	rows := make([]*types.Standard, 0, len(in))
	seen := map[string]bool{}
	for i, s := range in {
		row, err := toStandard(s)
		if err != nil {
			return 0, invalid(op, "standard %d: %v", i, err)
		}
		key := types.CanonicalStandardID(row.StandardID)
		if seen[key] {
			return 0, domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("standard %q appears twice in the import", row.StandardID), nil)
		}
		seen[key] = true
		rows = append(rows, row)
	}

	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, row := range rows {
			exists, err := ss.repo.ExistsCanonical(dbc, row.StandardID)
			if err != nil {
				return err
			}
			if exists {
				return domainagg.NewError(domainagg.CodeConflict, op, fmt.Sprintf("standard %q already exists", row.StandardID), nil)
			}
			if _, err := ss.repo.CreateWithTerms(dbc, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	ss.log.Info("standards imported", "count", len(rows))
	return len(rows), nil
}

func (ss *standardService) ImportDocument(ctx context.Context, r io.Reader) (int, error) {
	const op = "Reference.Standard.ImportDocument"
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read document: %w", err)
	}
	in, err := DecodeStandards(raw)
	if err != nil {
		return 0, invalid(op, "%v", err)
	}
	return ss.Import(ctx, in)
}

// DecodeStandards accepts YAML or JSON, either a single standard or a list.
func DecodeStandards(raw []byte) ([]StandardInput, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("decode standards: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, fmt.Errorf("decode standards: empty document")
	}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var out []StandardInput
		if err := root.Decode(&out); err != nil {
			return nil, fmt.Errorf("decode standards: %w", err)
		}
		return out, nil
	case yaml.MappingNode:
		var one StandardInput
		if err := root.Decode(&one); err != nil {
			return nil, fmt.Errorf("decode standard: %w", err)
		}
		return []StandardInput{one}, nil
	default:
		return nil, fmt.Errorf("decode standards: expected a mapping or a list")
	}
}

func toStandard(in StandardInput) (*types.Standard, error) {
	id := strings.TrimSpace(in.StandardID)
	if id == "" {
		return nil, fmt.Errorf("standardID is required")
	}
	terms := make([]types.Term, 0, len(in.Terms))
	for _, t := range in.Terms {
		notes := t.Notes
		if notes == nil {
			notes = []types.Note{}
		}
		raw, err := json.Marshal(notes)
		if err != nil {
			return nil, fmt.Errorf("encode notes of term %d: %w", t.TermID, err)
		}
		terms = append(terms, types.Term{
			TermID:      t.TermID,
			Term:        t.Term,
			TermEnglish: t.TermEnglish,
			Definition:  t.Definition,
			Notes:       raw,
		})
	}
	return &types.Standard{
		StandardID:          id,
		DocumentName:        in.DocumentName,
		DocumentNameEnglish: in.DocumentNameEnglish,
		Scope:               in.Scope,
		Terms:               terms,
	}, nil
}
