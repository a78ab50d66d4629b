package codec

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Jingtingtina/pragact-router/internal/llm"
)

// #region methods
// Full gRPC method names of the remote scoring service. Requests and
// responses are google.protobuf.Struct messages.
const (
	MethodScoreOptions = "/pragact.v1.ScoringService/ScoreOptions"
	MethodChooseOption = "/pragact.v1.ScoringService/ChooseOption"
)

// #endregion methods

// #region client-struct
// CodecClient wraps the gRPC connection to a remote scoring service.
// It implements llm.Client.
type CodecClient struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

var _ llm.Client = (*CodecClient)(nil)

// #endregion client-struct

// #region constructor
// NewCodecClient connects to the scoring gRPC server.
func NewCodecClient(addr string) (*CodecClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecClient{conn: conn, cc: conn}, nil
}

// NewCodecClientWithConn creates a CodecClient over an injected connection.
// Used for testing without a real gRPC server.
func NewCodecClientWithConn(cc grpc.ClientConnInterface) *CodecClient {
	return &CodecClient{cc: cc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region score-options
// ScoreOptions sends a prompt and option list and returns one log-score per option.
func (c *CodecClient) ScoreOptions(ctx context.Context, prompt string, options []string) ([]float64, error) {
	req, err := newRequest(prompt, options)
	if err != nil {
		return nil, err
	}
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, MethodScoreOptions, req, resp); err != nil {
		return nil, fmt.Errorf("score options rpc: %w", err)
	}

	list := resp.GetFields()["scores"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("score options rpc: response has no scores")
	}
	vals := list.GetValues()
	if len(vals) != len(options) {
		return nil, fmt.Errorf("score options rpc: got %d scores for %d options", len(vals), len(options))
	}
	scores := make([]float64, len(vals))
	for i, v := range vals {
		scores[i] = v.GetNumberValue()
	}
	return scores, nil
}

// #endregion score-options

// #region choose-option
// ChooseOption asks the remote service to pick one option.
func (c *CodecClient) ChooseOption(ctx context.Context, prompt string, options []string) (string, error) {
	req, err := newRequest(prompt, options)
	if err != nil {
		return "", err
	}
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, MethodChooseOption, req, resp); err != nil {
		return "", fmt.Errorf("choose option rpc: %w", err)
	}
	return llm.ParseChoice(resp.GetFields()["choice"].GetStringValue(), options)
}

// #endregion choose-option

// #region helpers
func newRequest(prompt string, options []string) (*structpb.Struct, error) {
	if len(options) == 0 {
		return nil, llm.ErrNoOptions
	}
	opts := make([]any, len(options))
	for i, o := range options {
		opts[i] = o
	}
	req, err := structpb.NewStruct(map[string]any{
		"prompt":  prompt,
		"options": opts,
	})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return req, nil
}

// #endregion helpers
