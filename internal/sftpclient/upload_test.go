package sftpclient

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeClient connects an sftp client to an in-process server over the real filesystem.
func pipeClient(t *testing.T) *sftp.Client {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	server, err := sftp.NewServer(serverConn)
	require.NoError(t, err)
	go server.Serve()

	cli, err := sftp.NewClientPipe(clientConn, clientConn)
	require.NoError(t, err)
	t.Cleanup(func() {
		cli.Close()
		server.Close()
	})
	return cli
}

func TestUploadFileValidation(t *testing.T) {
	ctx := context.Background()

	err := UploadFile(ctx, Config{}, "pack.zip", "pack.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing SFTP_HOST")

	cfg := Config{Host: "127.0.0.1", User: "u", Pass: "p", InsecureIgnoreHostKey: true}
	err = UploadFile(ctx, cfg, filepath.Join(t.TempDir(), "missing.zip"), "pack.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open local file", "local file is checked before dialing")
}

func TestUploadFileMissingKnownHosts(t *testing.T) {
	local := filepath.Join(t.TempDir(), "pack.zip")
	require.NoError(t, os.WriteFile(local, []byte("zip"), 0o644))

	cfg := Config{Host: "127.0.0.1", User: "u", Pass: "p", KnownHostsFile: filepath.Join(t.TempDir(), "none")}
	err := UploadFile(context.Background(), cfg, local, "pack.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "known_hosts")
}

func TestUpload(t *testing.T) {
	cli := pipeClient(t)
	remoteDir := filepath.Join(t.TempDir(), "packs", "es")

	require.NoError(t, upload(cli, strings.NewReader("first"), remoteDir, "es.zip"))
	require.NoError(t, upload(cli, strings.NewReader("second"), remoteDir, "es.zip"))

	b, err := os.ReadFile(filepath.Join(remoteDir, "es.zip"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(b), "existing file is replaced")

	_, err = os.Stat(filepath.Join(remoteDir, "es.zip.part"))
	assert.True(t, os.IsNotExist(err))
}
