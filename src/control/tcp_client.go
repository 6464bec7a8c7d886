package control

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, command, payload string) (bool, string, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	// scan configured range for resident using PING then request
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, deadline) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, deadline)
		if err != nil {
			continue
		}
		w := bufio.NewWriter(conn)
		if _, err := w.WriteString(command + "\n"); err != nil {
			conn.Close()
			return true, "", err
		}
		if len(payload) > 0 {
			if _, err := w.WriteString(payload); err != nil {
				conn.Close()
				return true, "", err
			}
		}
		if err := w.Flush(); err != nil {
			conn.Close()
			return true, "", err
		}
		// Half-close so the resident sees EOF on the LOAD payload.
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
		br := bufio.NewReader(conn)
		status, err := br.ReadString('\n')
		if err != nil {
			conn.Close()
			return true, "", err
		}
		if status == "OK\n" {
			b, _ := io.ReadAll(br)
			conn.Close()
			return true, string(b), nil
		}
		if status == "ERROR\n" {
			msg, _ := io.ReadAll(br)
			conn.Close()
			return true, "", errors.New(string(msg))
		}
		conn.Close()
		return true, "", errors.New("unexpected response: " + status)
	}
	return false, "", nil
}

// ping checks whether a resident answers PONG on addr.
func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return false
	}
	return resp == pongResponse
}
