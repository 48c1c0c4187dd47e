package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harryc904/Studio/internal/data/repos"
	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

const (
	GraphKindUseCase     = "usecase"
	GraphKindUserStory   = "userstory"
	GraphKindRequirement = "requirement"
)

type UserStoryView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type UseCaseView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UserStories []UserStoryView `json:"userstories"`
}

type GraphNode struct {
	ID          string   `json:"id"`
	UUID        string   `json:"uuid"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type GraphEdge struct {
	UUID   string `json:"uuid"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Label  string `json:"label"`
}

type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type UseCaseService interface {
	// List returns every use case with its user stories, ids rendered as UC-000001 and US-000001.
	List(ctx context.Context) ([]UseCaseView, error)
	// Graph assembles the use case / user story / requirement graph for the requested kinds.
	// No kinds means all three. Edges are only drawn when both endpoint kinds are requested.
	Graph(ctx context.Context, kinds []string) (Graph, error)
}

type useCaseService struct {
	log  *logger.Logger
	repo repos.UseCaseRepo
}

func NewUseCaseService(log *logger.Logger, repo repos.UseCaseRepo) UseCaseService {
	return &useCaseService{
		log:  log.With("service", "UseCaseService"),
		repo: repo,
	}
}

func (us *useCaseService) List(ctx context.Context) ([]UseCaseView, error) {
	rows, err := us.repo.ListWithStories(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list use cases: %w", err)
	}
	out := make([]UseCaseView, 0, len(rows))
	for _, uc := range rows {
		stories := make([]UserStoryView, 0, len(uc.UserStories))
		for _, s := range uc.UserStories {
			stories = append(stories, UserStoryView{ID: types.UserStoryCode(s.ID), Description: s.Description})
		}
		out = append(out, UseCaseView{
			ID:          types.UseCaseCode(uc.ID),
			Name:        uc.Name,
			Description: uc.Description,
			UserStories: stories,
		})
	}
	return out, nil
}

func (us *useCaseService) Graph(ctx context.Context, kinds []string) (Graph, error) {
	const op = "Reference.UseCase.Graph"
	want := map[string]bool{}
	for _, k := range kinds {
		switch k {
		case GraphKindUseCase, GraphKindUserStory, GraphKindRequirement:
			want[k] = true
		default:
			return Graph{}, invalid(op, "unknown graph type %q", k)
		}
	}
	if len(want) == 0 {
		want = map[string]bool{GraphKindUseCase: true, GraphKindUserStory: true, GraphKindRequirement: true}
	}

	var (
		useCases []*types.UseCase
		stories  []*types.UserStory
		links    []*types.RequirementLink
	)
	dbc := dbctx.Context{Ctx: ctx}
	g, _ := errgroup.WithContext(ctx)
	if want[GraphKindUseCase] {
		g.Go(func() (err error) {
			useCases, err = us.repo.ListUseCases(dbc)
			return err
		})
	}
	if want[GraphKindUserStory] {
		g.Go(func() (err error) {
			stories, err = us.repo.ListUserStories(dbc)
			return err
		})
	}
	if want[GraphKindRequirement] {
		g.Go(func() (err error) {
			links, err = us.repo.ListRequirementLinks(dbc)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Graph{}, fmt.Errorf("load graph: %w", err)
	}

	out := Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	for _, uc := range useCases {
		out.Nodes = append(out.Nodes, graphNode(types.UseCaseCode(uc.ID), uc.UUID.String(), uc.Name, uc.Description))
	}
	for _, s := range stories {
		code := types.UserStoryCode(s.ID)
		out.Nodes = append(out.Nodes, graphNode(code, s.UUID.String(), code, s.Description))
	}
	if want[GraphKindUseCase] && want[GraphKindUserStory] {
		for _, s := range stories {
			if s.UseCaseUUID == nil {
				continue
			}
			out.Edges = append(out.Edges, aggregationEdge(s.UUID.String()+"+"+s.UseCaseUUID.String(), s.UseCaseUUID.String(), s.UUID.String()))
		}
	}

	// A requirement linked to several use cases comes back once per link.
	seen := map[int64]bool{}
	for _, l := range links {
		if !seen[l.ID] {
			seen[l.ID] = true
			out.Nodes = append(out.Nodes, graphNode(types.RequirementCode(l.ID), l.UUID.String(), l.Name, l.Description))
		}
		if want[GraphKindUseCase] && l.UseCaseUUID != nil {
			out.Edges = append(out.Edges, aggregationEdge(l.UseCaseUUID.String()+"+"+l.UUID.String(), l.UUID.String(), l.UseCaseUUID.String()))
		}
	}
	return out, nil
}

func graphNode(id, uid, name, description string) GraphNode {
	return GraphNode{ID: id, UUID: uid, Label: name, Type: "node", Name: name, Description: description, Tags: []string{}}
}

func aggregationEdge(id, source, target string) GraphEdge {
	return GraphEdge{UUID: id, Source: source, Target: target, Type: "edges", Label: "Aggregation"}
}
