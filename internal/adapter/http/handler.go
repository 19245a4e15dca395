package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/randomnum/internal/app"
	"github.com/neomorfeo/randomnum/internal/domain"
)

// RandomResponse is the API representation of a ledger entry.
type RandomResponse struct {
	Seq   string `json:"seq" doc:"Sequence number (decimal)"`
	Value string `json:"value" doc:"Random value (decimal)"`
}

func toRandomResponse(r domain.Random) RandomResponse {
	return RandomResponse{Seq: r.Seq.String(), Value: r.Value.String()}
}

// --- Owner ---

type GetOwnerOutput struct {
	Body struct {
		Owner string `json:"owner" doc:"Owner identity (hex)"`
	}
}

// --- Operators ---

type AddOperatorInput struct {
	Body struct {
		Operator string `json:"operator" pattern:"^([0-9a-f]{2}){0,29}$" doc:"Identity to grant the operator role (hex)"`
	}
}

type AddOperatorOutput struct {
	Body struct {
		Added bool `json:"added" doc:"Always true on success"`
	}
}

// --- Randoms ---

type GetRandomInput struct {
	Seq string `path:"seq" pattern:"^[0-9]{1,78}$" doc:"Sequence number (decimal)"`
}

type GetRandomOutput struct {
	Body RandomResponse
}

type GetStatusOutput struct {
	Body struct {
		Seq    string `json:"seq" doc:"Sequence number (decimal)"`
		Status string `json:"status" enum:"missing,drawing,stored" doc:"Generation lifecycle state"`
	}
}

type GenerateRandomInput struct {
	Body struct {
		Seq string `json:"seq" pattern:"^[0-9]{1,78}$" doc:"Sequence number (decimal)"`
	}
}

type GenerateRandomOutput struct {
	Body RandomResponse
}

// Register adds the gate and all random-number routes to the Huma API.
func Register(api huma.API, svc *app.RandomService, gate *Gate) {
	api.UseMiddleware(gate.Middleware(api))

	huma.Register(api, huma.Operation{
		OperationID: "get-owner",
		Method:      http.MethodGet,
		Path:        "/api/v1/owner",
		Summary:     "Get the owner identity",
		Tags:        []string{"Access"},
	}, func(ctx context.Context, _ *struct{}) (*GetOwnerOutput, error) {
		owner, err := svc.Owner(ctx)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		out := &GetOwnerOutput{}
		out.Body.Owner = owner.String()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-operator",
		Method:      http.MethodPost,
		Path:        "/api/v1/operators",
		Summary:     "Grant the operator role (owner only)",
		Tags:        []string{"Access"},
	}, func(ctx context.Context, input *AddOperatorInput) (*AddOperatorOutput, error) {
		id, err := domain.ParseIdentity(input.Body.Operator)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		added, err := svc.AddOperator(ctx, Caller(ctx), id)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		out := &AddOperatorOutput{}
		out.Body.Added = added
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-random",
		Method:      http.MethodGet,
		Path:        "/api/v1/randoms/{seq}",
		Summary:     "Get the random value for a sequence number",
		Tags:        []string{"Randoms"},
	}, func(ctx context.Context, input *GetRandomInput) (*GetRandomOutput, error) {
		seq, err := domain.ParseNumber(input.Seq)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		value, ok, err := svc.Random(ctx, seq)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		if !ok {
			return nil, huma.Error404NotFound("no random value for sequence " + seq.String())
		}
		return &GetRandomOutput{Body: toRandomResponse(domain.Random{Seq: seq, Value: value})}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-random-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/randoms/{seq}/status",
		Summary:     "Get the generation state of a sequence number",
		Tags:        []string{"Randoms"},
	}, func(ctx context.Context, input *GetRandomInput) (*GetStatusOutput, error) {
		seq, err := domain.ParseNumber(input.Seq)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		status, err := svc.Status(ctx, seq)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		out := &GetStatusOutput{}
		out.Body.Seq = seq.String()
		out.Body.Status = string(status)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "generate-random",
		Method:      http.MethodPost,
		Path:        "/api/v1/randoms",
		Summary:     "Generate (or fetch) the random value for a sequence number (operator only)",
		Tags:        []string{"Randoms"},
	}, func(ctx context.Context, input *GenerateRandomInput) (*GenerateRandomOutput, error) {
		seq, err := domain.ParseNumber(input.Body.Seq)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		r, err := svc.Generate(ctx, Caller(ctx), seq)
		if err != nil {
			return nil, toHumaError(ctx, err)
		}
		return &GenerateRandomOutput{Body: toRandomResponse(r)}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidIdentity) || errors.Is(err, domain.ErrInvalidNumber) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	var authErr *domain.AuthorizationError
	if errors.As(err, &authErr) {
		return huma.Error403Forbidden(authErr.Error())
	}

	var entErr *domain.EntropySourceError
	if errors.As(err, &entErr) {
		slog.ErrorContext(ctx, "entropy source failed", "error", err)
		return huma.Error502BadGateway(entErr.Error())
	}

	slog.ErrorContext(ctx, "request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}
