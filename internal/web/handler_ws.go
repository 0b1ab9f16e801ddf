package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/coder/websocket"
	"github.com/creack/pty/v2"
	"go.uber.org/zap"
)

type resizeMsg struct {
	Type string `json:"type"`
	Cols uint16 `json:"cols"`
	Rows uint16 `json:"rows"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	cols := parseUint16(r.URL.Query().Get("cols"), 80)
	rows := parseUint16(r.URL.Query().Get("rows"), 24)

	exe, err := os.Executable()
	if err != nil {
		s.log.Error("resolve executable", zap.Error(err))
		conn.Close(websocket.StatusInternalError, "cannot find executable")
		return
	}

	cmd := exec.Command(exe, s.childArgs()...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		s.log.Error("pty start", zap.Error(err))
		conn.Close(websocket.StatusInternalError, "failed to start pty")
		return
	}

	log := s.log.With(zap.Int("pid", cmd.Process.Pid))
	log.Info("terminal attached", zap.Int64("terminals", s.terminals.Add(1)))
	defer func() {
		log.Info("terminal detached", zap.Int64("terminals", s.terminals.Add(-1)))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var once sync.Once
	cleanup := func() {
		cancel()
		ptmx.Close()
		if cmd.Process != nil {
			cmd.Process.Kill()
			cmd.Wait()
		}
	}
	defer once.Do(cleanup)

	// PTY -> WebSocket, binary frames so partial UTF-8 sequences survive.
	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := ptmx.Read(buf)
			if err != nil {
				log.Debug("pty read", zap.Error(err))
				once.Do(cleanup)
				conn.Close(websocket.StatusNormalClosure, "process exited")
				return
			}
			if err := conn.Write(ctx, websocket.MessageBinary, buf[:n]); err != nil {
				log.Debug("ws write", zap.Error(err))
				once.Do(cleanup)
				return
			}
		}
	}()

	// WebSocket -> PTY
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			log.Debug("ws read", zap.Error(err))
			return
		}

		if resize, ok := parseResize(data); ok {
			if err := pty.Setsize(ptmx, &pty.Winsize{Rows: resize.Rows, Cols: resize.Cols}); err != nil {
				log.Debug("pty resize", zap.Error(err))
			}
			continue
		}

		if _, err := ptmx.Write(data); err != nil {
			return
		}
	}
}

func (s *Server) childArgs() []string {
	args := []string{"tui", "--server", s.apiAddr}
	return append(args, s.extraArgs...)
}

// parseResize recognises the terminal's {"type":"resize"} control frame.
// Anything else is keyboard input.
func parseResize(data []byte) (resizeMsg, bool) {
	if len(data) == 0 || data[0] != '{' {
		return resizeMsg{}, false
	}
	var msg resizeMsg
	if json.Unmarshal(data, &msg) != nil || msg.Type != "resize" || msg.Cols == 0 || msg.Rows == 0 {
		return resizeMsg{}, false
	}
	return msg, true
}

func parseUint16(s string, def uint16) uint16 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil || v == 0 {
		return def
	}
	return uint16(v)
}
