package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Team-Watson-Denver/plugin-privy/internal/actions"
)

// Server 负责暴露 REST 接口，供外部宿主调用已注册的动作。
type Server struct {
	addr     string
	registry *actions.Registry
}

// NewServer 构造 API 服务实例。
func NewServer(addr string, registry *actions.Registry) *Server {
	return &Server{addr: addr, registry: registry}
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/actions", s.handleActions)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           withContext(ctx, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Handler 返回路由后的处理器，测试可以直接挂到 httptest 上。
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/actions", s.handleActions)
	return mux
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListActions(w, r)
	case http.MethodPost:
		s.handleInvokeAction(w, r)
	default:
		http.Error(w, "仅支持 GET/POST", http.StatusMethodNotAllowed)
	}
}

// invokeRequest 是动作调用的请求体。
type invokeRequest struct {
	Action  string         `json:"action"`
	Options map[string]any `json:"options"`
}

func (s *Server) handleListActions(w http.ResponseWriter, _ *http.Request) {
	if s.registry == nil {
		http.Error(w, "动作注册表未初始化", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.registry.Actions())
}

func (s *Server) handleInvokeAction(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "动作注册表未初始化", http.StatusServiceUnavailable)
		return
	}

	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "请求体解析失败", http.StatusBadRequest)
		return
	}
	if req.Action == "" {
		http.Error(w, "缺少 action 字段", http.StatusBadRequest)
		return
	}

	// 动作内部不抛错误，失败只体现在 Result.Success 上。
	result := s.registry.Invoke(r.Context(), req.Action, req.Options)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			http.Error(w, "服务已关闭", http.StatusServiceUnavailable)
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}
