package rpc

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/ledger"
	"github.com/danielpatrickdp/stakeplan/internal/logging"
)

// SourceGRPC tags runs recorded by the server.
const SourceGRPC = "grpc"

// Recorder persists finished runs. *ledger.Store implements it.
type Recorder interface {
	RecordRun(res engine.Result, source string) (ledger.Run, error)
}

// #region server

// Server implements EngineServiceServer on top of an engine.
type Server struct {
	eng *engine.Engine
	rec Recorder
	log *zap.Logger
}

// NewServer creates a Server. rec may be nil to skip recording; a nil log is a no-op.
func NewServer(eng *engine.Engine, rec Recorder, log *zap.Logger) *Server {
	return &Server{eng: eng, rec: rec, log: logging.OrNop(log)}
}

// Run normalizes the request struct, runs the engine and returns the envelope.
// A failed recording is logged and does not fail the call.
func (s *Server) Run(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}

	res := s.eng.Run(in.AsMap())

	if s.rec != nil {
		run, err := s.rec.RecordRun(res, SourceGRPC)
		if err != nil {
			s.log.Warn("record run failed", zap.Error(err))
		} else {
			s.log.Debug("run recorded", zap.String("run_id", run.ID))
		}
	}

	out, err := encodeResult(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

// #endregion server

// #region encode

// encodeResult converts the envelope to a Struct through its JSON form so
// field names match the JSON envelope exactly.
func encodeResult(res engine.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// #endregion encode
