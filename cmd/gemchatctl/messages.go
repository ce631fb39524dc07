package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matheus3301/gemchat/internal/api"
	"github.com/matheus3301/gemchat/internal/bus"
	"github.com/matheus3301/gemchat/internal/chatstore"
	"github.com/spf13/cobra"
)

func newMessagesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read and write room histories",
	}
	cmd.AddCommand(
		newMessagesListCmd(opts),
		newMessagesSendCmd(opts),
		newMessagesAppendCmd(opts),
	)
	return cmd
}

func newMessagesListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <room-id>",
		Short: "Show a room's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := c.ListMessages(ctx, args[0])
			if err != nil {
				return describe(err)
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), resp.Messages)
			}
			printMessages(cmd.OutOrStdout(), resp.Messages)
			return nil
		},
	}
}

func newMessagesSendCmd(opts *rootOptions) *cobra.Command {
	var (
		images []string
		wait   bool
	)

	cmd := &cobra.Command{
		Use:   "send <room-id> [text]",
		Short: "Send a user message; the assistant replies shortly after",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID := args[0]
			req := &api.SendMessageRequest{
				RoomID: roomID,
				Text:   strings.Join(args[1:], " "),
			}
			for _, path := range images {
				uri, err := loadImage(path)
				if err != nil {
					return err
				}
				req.Images = append(req.Images, uri)
			}

			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			var events *api.EventReceiver
			if wait {
				// Subscribe first so the reply cannot slip past.
				events, err = c.WatchEvents(ctx, bus.KindMessageAppended)
				if err != nil {
					return describe(err)
				}
			}

			resp, err := c.SendMessage(ctx, req)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if !wait {
				if opts.JSON {
					return printJSON(out, resp)
				}
				fmt.Fprintf(out, "Sent at %s\n", resp.Message.Timestamp)
				return nil
			}

			replyMsg, err := awaitReply(events, roomID)
			if err != nil {
				return describe(err)
			}
			if opts.JSON {
				return printJSON(out, replyMsg)
			}
			printMessages(out, []chatstore.Message{resp.Message, replyMsg})
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&images, "image", "i", nil, "attach an image file (repeatable)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the assistant reply and print it")
	return cmd
}

func newMessagesAppendCmd(opts *rootOptions) *cobra.Command {
	var (
		from      string
		timestamp string
		images    []string
	)

	cmd := &cobra.Command{
		Use:   "append <room-id> [text]",
		Short: "Append a message as either sender without triggering a reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := chatstore.Message{
				From:      chatstore.Sender(from),
				Text:      strings.Join(args[1:], " "),
				Timestamp: timestamp,
			}
			for _, path := range images {
				uri, err := loadImage(path)
				if err != nil {
					return err
				}
				msg.Image = append(msg.Image, uri)
			}

			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := c.AppendMessage(ctx, &api.AppendMessageRequest{RoomID: args[0], Message: msg})
			if err != nil {
				return describe(err)
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), resp.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appended %s message at %s\n", resp.Message.From, resp.Message.Timestamp)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(chatstore.SenderUser), "sender: user or assistant")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "display time; stamped by the daemon when empty")
	cmd.Flags().StringSliceVarP(&images, "image", "i", nil, "attach an image file (repeatable)")
	return cmd
}

// awaitReply reads message events until the assistant answers in roomID.
func awaitReply(events *api.EventReceiver, roomID string) (chatstore.Message, error) {
	for {
		env, err := events.Recv()
		if err != nil {
			return chatstore.Message{}, err
		}
		var appended chatstore.MessageAppended
		if err := json.Unmarshal(env.Payload, &appended); err != nil {
			return chatstore.Message{}, fmt.Errorf("decode %s: %w", env.Kind, err)
		}
		if appended.RoomID == roomID && appended.Message.From == chatstore.SenderAssistant {
			return appended.Message, nil
		}
	}
}

func loadImage(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	uri, err := chatstore.ImageDataURI(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return uri, nil
}

func printMessages(w io.Writer, msgs []chatstore.Message) {
	table := newTable(w, "#", "From", "Time", "Text", "Images")
	for i, m := range msgs {
		table.Append([]string{
			strconv.Itoa(i + 1),
			string(m.From),
			m.Timestamp,
			m.Text,
			strconv.Itoa(len(m.Image)),
		})
	}
	table.Render()
}
