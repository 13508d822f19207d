// Package pipeline runs one chatbot generation as a fixed graph of stages:
// validate_config, design_architecture, generate_code, an optional
// create_docker and finalize_output.
//
// Every stage is tolerant: failures are appended to State.Errors and the run
// carries on to the terminal. Only engine faults (cancellation, a broken
// graph) surface as errors from Run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/graph"
	"github.com/sweetpotato0/chatbot-factory/middleware"
	"github.com/sweetpotato0/chatbot-factory/middleware/errorhandler"
	"github.com/sweetpotato0/chatbot-factory/middleware/logger"
	"github.com/sweetpotato0/chatbot-factory/middleware/tracing"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
	"github.com/sweetpotato0/chatbot-factory/prompt"
)

// FailureHook observes every entry a stage adds to State.Errors
type FailureHook func(ctx context.Context, stage string, err error)

// Options configures a Pipeline. Designer, Generator and Credentials are required.
type Options struct {
	Designer    Designer
	Generator   CodeGenerator
	Credentials CredentialProvider

	// OutputPath is the base directory run outputs are created under.
	OutputPath string
	// Registry is the container registry host used for image references.
	Registry string

	// Templates renders the ancillary files. Nil uses the built-in templates.
	Templates *prompt.Manager
	// Middleware wraps every stage, after the built-in tracing and logging.
	Middleware []middleware.Middleware
	Logger     *slog.Logger
	OnFailure  FailureHook
}

// Pipeline is safe for concurrent use; each Run owns its own State.
type Pipeline struct {
	designer    Designer
	generator   CodeGenerator
	credentials CredentialProvider
	outputPath  string
	registry    string
	ancillary   ancillaryWriter
	chain       *middleware.MiddlewareChain
	onFailure   FailureHook
	graph       *graph.Graph[*State]
}

// New validates the options and builds the stage graph.
func New(opts Options) (*Pipeline, error) {
	if opts.Designer == nil || opts.Generator == nil || opts.Credentials == nil {
		return nil, fmt.Errorf("pipeline: designer, generator and credentials are required: %w", fterrors.ErrInvalidInput)
	}
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("pipeline: %w", fterrors.ErrOutputPathMissing)
	}

	templates := opts.Templates
	if templates == nil {
		templates = prompt.NewManager()
		if err := RegisterAncillaryTemplates(templates); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = logging.WithComponent("pipeline")
	}

	chain := middleware.NewChain(tracing.NewStageTracer(nil), logger.NewStageLogger(log))
	for _, m := range opts.Middleware {
		chain.Add(m)
	}
	// innermost, so the logger and tracer see recovered panics as errors
	chain.Add(errorhandler.NewRecoverer(log))

	p := &Pipeline{
		designer:    opts.Designer,
		generator:   opts.Generator,
		credentials: opts.Credentials,
		outputPath:  opts.OutputPath,
		registry:    opts.Registry,
		ancillary:   ancillaryWriter{templates: templates},
		chain:       chain,
		onFailure:   opts.OnFailure,
	}

	g, err := p.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p.graph = g
	return p, nil
}

func (p *Pipeline) buildGraph() (*graph.Graph[*State], error) {
	b := graph.NewBuilder[*State]()
	for _, st := range p.stages() {
		b.AddNode(st.name, p.tolerant(st))
	}

	return b.
		AddConditionalEdges(StageValidateConfig, shouldContinueAfterValidation, map[string]string{
			BranchContinue: StageDesignArchitecture,
			BranchError:    graph.End,
		}).
		AddEdge(StageDesignArchitecture, StageGenerateCode).
		AddConditionalEdges(StageGenerateCode, shouldCreateDocker, map[string]string{
			BranchCreateDocker: StageCreateDocker,
			BranchFinalize:     StageFinalizeOutput,
		}).
		AddEdge(StageCreateDocker, StageFinalizeOutput).
		AddEdge(StageFinalizeOutput, graph.End).
		SetStart(StageValidateConfig).
		SetMaxVisits(1).
		Build()
}

// reportFailures hands each new error entry to the failure hook. The entry
// recorded for a returned error is reported with that error.
func (p *Pipeline) reportFailures(ctx context.Context, stage string, err error, added []string) {
	if p.onFailure == nil {
		return
	}
	for i, text := range added {
		if err != nil && i == len(added)-1 {
			p.onFailure(ctx, stage, err)
			continue
		}
		p.onFailure(ctx, stage, errors.New(text))
	}
}

// tolerant wraps a stage so that it never returns an error to the engine.
func (p *Pipeline) tolerant(st stage) graph.NodeFunc[*State] {
	return func(ctx context.Context, s *State) (*State, error) {
		s.Visited = append(s.Visited, st.name)
		obs := observerFrom(ctx)
		if obs != nil {
			obs(StageEvent{RunID: s.RunID, Stage: st.name, Status: StatusStarted})
		}

		before := len(s.Errors)
		mctx := middleware.NewContext(ctx, st.name, s.RunID)
		err := p.chain.Execute(mctx, func(c *middleware.Context) error {
			return st.run(c.Context(), s)
		})
		if err != nil {
			st.fail.record(s, err)
		}
		p.reportFailures(ctx, st.name, err, s.Errors[before:])

		if obs != nil {
			ev := StageEvent{RunID: s.RunID, Stage: st.name, Status: StatusCompleted, Message: s.Message}
			if err != nil {
				ev.Status = StatusFailed
				ev.Error = err.Error()
			}
			obs(ev)
		}
		return s, nil
	}
}

// Run executes one generation. The returned error is non-nil only when the
// engine itself fails; stage failures are in State.Errors.
func (p *Pipeline) Run(ctx context.Context, req *chatbot.GenerationRequest) (*State, error) {
	if req == nil {
		return nil, fmt.Errorf("pipeline: nil request: %w", fterrors.ErrInvalidInput)
	}
	return p.graph.Execute(ctx, NewState(req))
}

// Graph exposes the stage graph for inspection.
func (p *Pipeline) Graph() *graph.Graph[*State] {
	return p.graph
}
