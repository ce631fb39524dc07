package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matheus3301/gemchat/internal/chatstore"
	"github.com/spf13/cobra"
)

func newRoomsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage chat rooms",
	}
	cmd.AddCommand(
		newRoomsListCmd(opts),
		newRoomsCreateCmd(opts),
		newRoomsDeleteCmd(opts),
		newRoomsRenameCmd(opts),
	)
	return cmd
}

func newRoomsListCmd(opts *rootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List rooms in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			var rooms []chatstore.ChatRoom
			if search != "" {
				resp, err := c.SearchRooms(ctx, search)
				if err != nil {
					return describe(err)
				}
				rooms = resp.Rooms
			} else {
				resp, err := c.ListRooms(ctx)
				if err != nil {
					return describe(err)
				}
				rooms = resp.Rooms
			}

			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), rooms)
			}
			printRooms(cmd.OutOrStdout(), rooms)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only rooms whose title contains this text")
	return cmd
}

func newRoomsCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := c.CreateRoom(ctx, strings.Join(args, " "))
			if err != nil {
				return describe(err)
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), resp.Room)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created room %s (%s)\n", resp.Room.ID, resp.Room.Title)
			return nil
		},
	}
}

func newRoomsDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete a room and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			if err := c.DeleteRoom(ctx, args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted room %s\n", args[0])
			return nil
		},
	}
}

func newRoomsRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <room-id> <title>",
		Short: "Change a room title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := c.RenameRoom(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return describe(err)
			}
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), resp.Room)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed room %s to %s\n", resp.Room.ID, resp.Room.Title)
			return nil
		},
	}
}

func printRooms(w io.Writer, rooms []chatstore.ChatRoom) {
	table := newTable(w, "ID", "Title", "Created")
	for _, r := range rooms {
		table.Append([]string{r.ID, r.Title, r.CreatedAt.Local().Format(time.DateTime)})
	}
	table.Render()
}
