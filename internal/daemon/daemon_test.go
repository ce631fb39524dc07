package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/gemchat/internal/api"
	"github.com/matheus3301/gemchat/internal/chatstore"
	"github.com/matheus3301/gemchat/internal/config"
	"github.com/matheus3301/gemchat/internal/lock"
	"github.com/matheus3301/gemchat/internal/profile"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

// useHome points the profile tree at a short temp dir; Unix socket paths are
// limited to about 104 characters on macOS.
func useHome(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", "gemchat-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	t.Setenv(profile.HomeEnv, dir)
	return dir
}

func testParams(driver string) Params {
	cfg := config.Default()
	cfg.Storage.Driver = driver
	cfg.Reply.Delay = 10 * time.Millisecond
	cfg.Log.Level = "error"
	return Params{Profile: "test", Config: cfg}
}

func startDaemon(t *testing.T, p Params) (*fxtest.App, *api.Client) {
	t.Helper()
	app := fxtest.New(t, fx.NopLogger, Module(p))
	app.RequireStart()

	client, err := api.Dial(profile.SocketPath(p.Profile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return app, client
}

func TestDaemonLifecycle(t *testing.T) {
	req := require.New(t)
	useHome(t)
	ctx := context.Background()

	app, client := startDaemon(t, testParams("memory"))

	st, err := client.GetStatus(ctx)
	req.NoError(err)
	req.Equal("test", st.Profile)
	req.Equal("READY", st.Status)
	req.Equal(4, st.RoomCount)

	info, err := os.Stat(profile.SocketPath("test"))
	req.NoError(err)
	req.Equal(os.FileMode(0600), info.Mode().Perm())

	created, err := client.CreateRoom(ctx, "Daemon room")
	req.NoError(err)

	sent, err := client.SendMessage(ctx, &api.SendMessageRequest{RoomID: created.Room.ID, Text: "ping"})
	req.NoError(err)
	req.True(sent.ReplyScheduled)

	req.Eventually(func() bool {
		msgs, err := client.ListMessages(ctx, created.Room.ID)
		return err == nil && len(msgs.Messages) == 2
	}, 2*time.Second, 10*time.Millisecond)

	app.RequireStop()

	_, err = os.Stat(profile.SocketPath("test"))
	req.True(os.IsNotExist(err), "socket should be removed on stop")
	_, err = os.Stat(filepath.Join(profile.Dir("test"), lock.FileName))
	req.True(os.IsNotExist(err), "lock should be released on stop")
}

func TestDaemonPersistsAcrossRestart(t *testing.T) {
	for _, driver := range []string{"sqlite", "badger"} {
		t.Run(driver, func(t *testing.T) {
			req := require.New(t)
			useHome(t)
			ctx := context.Background()

			app, client := startDaemon(t, testParams(driver))
			created, err := client.CreateRoom(ctx, "Survivor")
			req.NoError(err)
			_, err = client.AppendMessage(ctx, &api.AppendMessageRequest{
				RoomID:  created.Room.ID,
				Message: chatstore.Message{From: chatstore.SenderUser, Text: "still here?"},
			})
			req.NoError(err)
			app.RequireStop()

			app, client = startDaemon(t, testParams(driver))
			defer app.RequireStop()

			rooms, err := client.ListRooms(ctx)
			req.NoError(err)
			req.Len(rooms.Rooms, 5)
			req.Equal(created.Room.ID, rooms.Rooms[4].ID)
			req.Equal("Survivor", rooms.Rooms[4].Title)

			msgs, err := client.ListMessages(ctx, created.Room.ID)
			req.NoError(err)
			req.Len(msgs.Messages, 1)
			req.Equal("still here?", msgs.Messages[0].Text)
		})
	}
}

func TestEphemeralIgnoresDriver(t *testing.T) {
	req := require.New(t)
	useHome(t)

	p := testParams("sqlite")
	p.Ephemeral = true
	app, client := startDaemon(t, p)
	_, err := client.CreateRoom(context.Background(), "Gone")
	req.NoError(err)
	app.RequireStop()

	_, err = os.Stat(profile.SQLitePath("test"))
	req.True(os.IsNotExist(err), "ephemeral run must not create a database")
}

func TestSecondDaemonFailsOnLock(t *testing.T) {
	req := require.New(t)
	useHome(t)

	lk, err := lock.Acquire(profile.Dir("test"))
	req.NoError(err)
	defer func() { _ = lk.Release() }()

	app := fx.New(fx.NopLogger, Module(testParams("memory")))
	req.Error(app.Err())
	req.ErrorContains(app.Err(), "profile lock held")
}
