package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/qrave1/RoomMeet/internal/conference"
	"github.com/qrave1/RoomMeet/internal/infra/ports/console"
)

const roomHelp = "commands: layout <grid|speaker-left|speaker-right>, participants, close, members, invite, leave, end, help"

var errRoomClosed = errors.New("room closed")

// runRoom joins callID and drives the call room from line commands until the
// call is left or ended. EOF on in counts as leave.
func runRoom(ctx context.Context, m *meetingClient, callID string, in io.Reader) error {
	call, err := conference.NewJoinResolver(m.sess).JoinByRoute(ctx, callID)
	if err != nil {
		return err
	}

	controller := conference.NewController(m.sess, call, console.NewClipboard(m.out))
	roster := conference.NewRoster(call)

	g, gCtx := errgroup.WithContext(ctx)
	ready := make(chan struct{})

	g.Go(func() error { return controller.Run(gCtx) })
	g.Go(func() error { return roster.Run(gCtx) })
	g.Go(func() error { return watchRoom(gCtx, m.out, controller, ready) })
	g.Go(func() error { return readCommands(gCtx, m, controller, roster, in, ready) })

	err = g.Wait()
	if errors.Is(err, errRoomClosed) {
		return nil
	}

	return err
}

// watchRoom prints every state change and stops the room on a terminal state.
// ready is closed once the call is past connecting.
func watchRoom(ctx context.Context, out io.Writer, controller *conference.Controller, ready chan<- struct{}) error {
	last := conference.CallingStateUnknown
	opened := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-controller.Views():
			if v.State == last {
				continue
			}
			last = v.State

			fmt.Fprintln(out, formatView(v))

			if !opened && v.State != conference.CallingStateConnecting {
				opened = true
				close(ready)
			}

			switch v.State {
			case conference.CallingStateLeft, conference.CallingStateEnded, conference.CallingStateIdle:
				return errRoomClosed
			}
		}
	}
}

func readCommands(
	ctx context.Context,
	m *meetingClient,
	controller *conference.Controller,
	roster *conference.Roster,
	in io.Reader,
	ready <-chan struct{},
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ready:
	}

	fmt.Fprintln(m.out, roomHelp)

	lines := make(chan string)

	// Scanner нельзя прервать, поэтому читаем в отдельной горутине
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		var (
			line string
			ok   bool
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}

		if !ok {
			if err := controller.Leave(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		}

		done, err := runCommand(ctx, m, controller, roster, line)
		if err != nil {
			fmt.Fprintf(m.out, "error: %v\n", err)
		}

		if done {
			// Комната закроется, когда придёт событие left/ended
			<-ctx.Done()
			return nil
		}
	}
}

func runCommand(
	ctx context.Context,
	m *meetingClient,
	controller *conference.Controller,
	roster *conference.Roster,
	line string,
) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "layout":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: layout <grid|speaker-left|speaker-right>")
		}

		if err := controller.SetLayout(conference.LayoutMode(fields[1])); err != nil {
			return false, err
		}

	case "participants":
		controller.ToggleParticipants()

	case "close":
		controller.CloseParticipants()

	case "members":
		fmt.Fprintln(m.out, formatRoster(roster.Render()))
		return false, nil

	case "invite":
		return false, controller.CopyInviteLink()

	case "leave":
		if err := controller.Leave(ctx); err != nil {
			return false, err
		}

		return true, nil

	case "end":
		if err := controller.EndCall(ctx); err != nil {
			return false, err
		}

		return true, nil

	case "help":
		fmt.Fprintln(m.out, roomHelp)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}

	fmt.Fprintln(m.out, formatView(controller.View()))

	return false, nil
}

func formatView(v conference.RoomView) string {
	switch v.Mode {
	case conference.ViewHidden:
		return fmt.Sprintf("state=%s (signed out)", v.State)
	case conference.ViewLoading:
		return fmt.Sprintf("state=%s", v.State)
	}

	participants := "hidden"
	if v.ShowParticipants {
		participants = "shown"
	}

	controls := make([]string, 0, len(v.Controls))
	for _, c := range v.Controls {
		controls = append(controls, string(c))
	}

	return fmt.Sprintf(
		"state=%s layout=%s participants=%s controls=%s",
		v.State, v.Layout, participants, strings.Join(controls, ","),
	)
}
