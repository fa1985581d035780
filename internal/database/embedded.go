package database

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/neochat/relay/internal/config"
)

const (
	embeddedDataDir  = "./relay_data"
	embeddedPort     = 5434
	embeddedPassword = "postgres"
)

// startEmbedded launches a private PostgreSQL process for zero-config runs.
// The returned config points at it.
func startEmbedded(cfg config.DatabaseConfig) (*embeddedpostgres.EmbeddedPostgres, config.DatabaseConfig, error) {
	log.Println("📦 Storage: [Embedded PostgreSQL] - starting local instance...")

	reapOrphan(embeddedDataDir)
	if err := waitForPort(embeddedPort, 3*time.Second); err != nil {
		return nil, cfg, err
	}

	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(embeddedDataDir).
		Port(uint32(embeddedPort)).
		Database(cfg.Database).
		Username(cfg.Username).
		Password(embeddedPassword))

	if err := pg.Start(); err != nil {
		return nil, cfg, fmt.Errorf("failed to start embedded database: %w", err)
	}

	cfg.Host = "localhost"
	cfg.Port = strconv.Itoa(embeddedPort)
	cfg.Password = embeddedPassword
	log.Printf("✅ Embedded PostgreSQL listening on port %d", embeddedPort)
	return pg, cfg, nil
}

// reapOrphan stops a postmaster left behind by a crashed run so the data
// directory can be reused.
func reapOrphan(dataDir string) {
	pidFile := filepath.Join(dataDir, "postmaster.pid")
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return
	}

	firstLine, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(firstLine))
	if err != nil {
		log.Printf("⚠️  Unreadable postmaster.pid: %v", err)
		return
	}

	proc, err := os.FindProcess(pid)
	if err != nil || proc.Signal(syscall.Signal(0)) != nil {
		log.Printf("🧹 Removing stale postmaster.pid (PID %d is gone)", pid)
		os.Remove(pidFile)
		return
	}

	log.Printf("⚠️  Stopping orphaned PostgreSQL (PID %d)...", pid)
	_ = proc.Signal(syscall.SIGTERM)
	for i := 0; i < 10; i++ {
		time.Sleep(500 * time.Millisecond)
		if proc.Signal(syscall.Signal(0)) != nil {
			os.Remove(pidFile)
			return
		}
	}

	log.Printf("⚠️  PID %d ignored SIGTERM, killing", pid)
	_ = proc.Kill()
	time.Sleep(500 * time.Millisecond)
	os.Remove(pidFile)
}

// waitForPort waits until nothing accepts connections on port.
func waitForPort(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for portBusy(port) {
		if time.Now().After(deadline) {
			return fmt.Errorf("port %d is still in use by another process", port)
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil
}

func portBusy(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
