// Command mpinger-echo is a trivial UDP echo peer used to exercise the UDP
// prober end to end: it replies "pong" to a case-insensitive "ping" payload,
// and echoes anything else back verbatim.
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

var (
	address = pflag.String("address", "0.0.0.0", "Address to bind.")
	port    = pflag.Uint16("port", 8888, "Port to bind.")
	debug   = pflag.Bool("debug", false, "Enable debug logging.")
)

const maxDatagramSize = 65536

func main() {
	pflag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level}))

	lc := net.ListenConfig{Control: setReuseAddr}
	pconn, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort(*address, fmtPort(*port)))
	if err != nil {
		logger.Error("failed to bind", "address", *address, "port", *port, "error", err)
		os.Exit(1)
	}
	conn := pconn.(*net.UDPConn)
	defer conn.Close()

	logger.Info("listening", "address", conn.LocalAddr().String())

	buf := make([]byte, maxDatagramSize)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			logger.Error("read failed", "error", err)
			continue
		}
		reply := buf[:n]
		if strings.EqualFold(strings.TrimSpace(string(buf[:n])), "ping") {
			reply = []byte("pong")
		}
		if _, err := conn.WriteToUDP(reply, peer); err != nil {
			logger.Debug("write failed", "peer", peer.String(), "error", err)
		}
	}
}

func fmtPort(p uint16) string {
	return strconv.Itoa(int(p))
}

// setReuseAddr allows rebinding the listen port immediately after restart,
// before the kernel has released the previous socket's TIME_WAIT state.
func setReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
