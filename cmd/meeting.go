package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrave1/RoomMeet/internal/application/config"
	"github.com/qrave1/RoomMeet/internal/application/constant"
	"github.com/qrave1/RoomMeet/internal/conference"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/callapi"
	"github.com/qrave1/RoomMeet/internal/infra/ports/console"
)

// meetingClient is a signed-in console session against a RoomMeet server.
type meetingClient struct {
	api    *callapi.Client
	sess   *conference.Session
	router *console.Router
	out    io.Writer
}

func newMeetingClient(ctx context.Context, cfg *config.ClientConfig, out io.Writer) (*meetingClient, error) {
	api, err := callapi.New(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	if cfg.Username != "" {
		if err = api.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	// Без пользователя оркестратор сам отправит на /login
	user, err := api.Me(ctx)
	if err != nil && !errors.Is(err, callapi.ErrUnauthorized) {
		return nil, fmt.Errorf("get current user: %w", err)
	}

	router := console.NewRouter(out)

	return &meetingClient{
		api: api,
		sess: &conference.Session{
			User:     user,
			Backend:  api,
			Router:   router,
			Notifier: console.NewNotifier(out),
			BaseURL:  cfg.BaseURL,
		},
		router: router,
		out:    out,
	}, nil
}

func (m *meetingClient) Close() error {
	return m.api.Close()
}

func (m *meetingClient) create(ctx context.Context, intent conference.MeetingIntent, draft conference.MeetingDraft) (string, error) {
	route, err := conference.NewOrchestrator(m.sess).Select(ctx, intent, draft)
	if err != nil {
		return "", err
	}

	if id, ok := conference.MeetingIDFromPath(route); ok && intent == conference.IntentInstant {
		fmt.Fprintf(m.out, "meeting %s: %s%s\n", id, strings.TrimSuffix(m.sess.BaseURL, "/"), route)
	}

	return route, nil
}

func (m *meetingClient) printMembers(ctx context.Context, callID string) error {
	roster := conference.NewRoster(m.api.Call(conference.DefaultCallType, callID))
	if err := roster.Refresh(ctx); err != nil {
		return err
	}

	fmt.Fprintln(m.out, formatRoster(roster.Render()))

	return nil
}

func (m *meetingClient) printUpcoming(ctx context.Context) error {
	calls, err := m.api.ListUpcoming(ctx)
	if err != nil {
		return fmt.Errorf("list upcoming calls: %w", err)
	}

	if len(calls) == 0 {
		fmt.Fprintln(m.out, "no upcoming meetings")
		return nil
	}

	for _, call := range calls {
		var startsAt string
		if call.StartsAt != nil {
			startsAt = call.StartsAt.Local().Format(time.RFC1123)
		}

		fmt.Fprintf(m.out, "%s  %s  %s\n", startsAt, call.ID, call.Description)
	}

	return nil
}

func formatRoster(v conference.RosterView) string {
	if !v.Visible {
		return "members (0)"
	}

	ids := make([]string, 0, len(v.Avatars))
	for _, avatar := range v.Avatars {
		ids = append(ids, avatar.UserID)
	}

	return fmt.Sprintf("members (%d): %s", v.Count, strings.Join(ids, ", "))
}

// withMeetingClient loads client config, signs in and runs fn.
func withMeetingClient(fn func(ctx context.Context, m *meetingClient, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewClient()
		if err != nil {
			return fmt.Errorf("load client config: %w", err)
		}

		setupClientLogger(cfg.Debug)

		out := console.SyncWriter(cmd.OutOrStdout())

		m, err := newMeetingClient(cmd.Context(), cfg, out)
		if err != nil {
			return err
		}

		defer func() {
			if err := m.Close(); err != nil {
				slog.Warn("close client", slog.Any(constant.Error, err))
			}
		}()

		return fn(cmd.Context(), m, args)
	}
}

// Клиент пишет логи в stderr, чтобы не мешать выводу команд
func setupClientLogger(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

var (
	joinAfterCreate bool
	scheduleAt      string
)

var meetingCmd = &cobra.Command{
	Use:   "meeting",
	Short: "Create, schedule and join meetings on a RoomMeet server",
}

var meetingRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register ROOMMEET_USERNAME with ROOMMEET_PASSWORD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewClient()
		if err != nil {
			return fmt.Errorf("load client config: %w", err)
		}

		api, err := callapi.New(cfg.ServerURL)
		if err != nil {
			return err
		}

		if err = api.Register(cmd.Context(), cfg.Username, cfg.Password); err != nil {
			return fmt.Errorf("register: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", cfg.Username)

		return nil
	},
}

var meetingNewCmd = &cobra.Command{
	Use:   "new [description]",
	Short: "Start an instant meeting",
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		draft := conference.NewMeetingDraft(time.Now())
		draft.Description = strings.Join(args, " ")

		route, err := m.create(ctx, conference.IntentInstant, draft)
		if err != nil {
			return err
		}

		id, ok := conference.MeetingIDFromPath(route)
		if !joinAfterCreate || !ok {
			return nil
		}

		return runRoom(ctx, m, id, os.Stdin)
	}),
}

var meetingScheduleCmd = &cobra.Command{
	Use:   "schedule [description]",
	Short: "Schedule a meeting for later",
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		draft := conference.MeetingDraft{Description: strings.Join(args, " ")}

		if scheduleAt != "" {
			at, err := time.Parse(time.RFC3339, scheduleAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}

			draft.DateTime = at
		}

		_, err := m.create(ctx, conference.IntentSchedule, draft)

		return err
	}),
}

var meetingJoinCmd = &cobra.Command{
	Use:   "join <link>",
	Short: "Join a meeting by its invite link",
	Args:  cobra.ExactArgs(1),
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		link, err := m.create(ctx, conference.IntentJoin, conference.MeetingDraft{Link: args[0]})
		if err != nil {
			return err
		}

		id, ok := conference.MeetingIDFromPath(link)
		if !ok {
			return fmt.Errorf("join: %q is not a meeting link", link)
		}

		return runRoom(ctx, m, id, os.Stdin)
	}),
}

var meetingRoomCmd = &cobra.Command{
	Use:   "room <id>",
	Short: "Enter a meeting room",
	Args:  cobra.ExactArgs(1),
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		return runRoom(ctx, m, args[0], os.Stdin)
	}),
}

var meetingMembersCmd = &cobra.Command{
	Use:   "members <id>",
	Short: "List members of a meeting",
	Args:  cobra.ExactArgs(1),
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		return m.printMembers(ctx, args[0])
	}),
}

var meetingUpcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List upcoming meetings",
	Args:  cobra.NoArgs,
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		return m.printUpcoming(ctx)
	}),
}

var meetingRecordingsCmd = &cobra.Command{
	Use:   "recordings",
	Short: "Open recordings",
	Args:  cobra.NoArgs,
	RunE: withMeetingClient(func(ctx context.Context, m *meetingClient, args []string) error {
		_, err := m.create(ctx, conference.IntentViewRecordings, conference.MeetingDraft{})
		return err
	}),
}

func init() {
	meetingNewCmd.Flags().BoolVar(&joinAfterCreate, "join", false, "enter the room right after creating it")
	meetingScheduleCmd.Flags().StringVar(&scheduleAt, "at", "", "start time in RFC3339, e.g. 2026-10-15T18:00:00+03:00")

	meetingCmd.AddCommand(
		meetingRegisterCmd,
		meetingNewCmd,
		meetingScheduleCmd,
		meetingJoinCmd,
		meetingRoomCmd,
		meetingMembersCmd,
		meetingUpcomingCmd,
		meetingRecordingsCmd,
	)

	rootCmd.AddCommand(meetingCmd)
}
