package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendar"
	"github.com/ChefJodlak/prooptica-sub000/internal/calendarview"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

const help = `commands:
  n            next week
  p            previous week
  d YYYY-MM-DD select day
  s HH:MM      pick a slot on the selected day
  r            retry after an error
  f            refresh the current week
  ?            this help
  q            quit`

type shell struct {
	view   *calendarview.View
	out    io.Writer
	picked *pick
}

type pick struct {
	date string
	slot calendar.TimeSlot
}

func newShell(fetcher calendarview.Fetcher, out io.Writer, logger *logging.Logger) *shell {
	sh := &shell{out: out}
	sh.view = calendarview.NewView(fetcher, func(slot calendar.TimeSlot, date string) {
		sh.picked = &pick{date: date, slot: slot}
	}, logger)
	return sh
}

// run loads the specialist and processes commands until q or EOF.
func (sh *shell) run(ctx context.Context, specialistID string, in io.Reader) error {
	sh.report(sh.view.SetSpecialist(ctx, specialistID))
	sh.render()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch fields[0] {
		case "q", "quit", "exit":
			return nil
		case "?", "help":
			fmt.Fprintln(sh.out, help)
			continue
		case "n":
			sh.report(sh.view.Next(ctx))
		case "p":
			sh.report(sh.view.Prev(ctx))
		case "r":
			sh.report(sh.view.Retry(ctx))
		case "f":
			sh.report(sh.view.Refresh(ctx))
		case "d":
			sh.report(sh.view.SelectDay(arg))
		case "s":
			sh.picked = nil
			if err := sh.view.SelectSlot(sh.view.State().SelectedDate, arg); err != nil {
				sh.report(err)
				continue
			}
			if sh.picked != nil && sh.picked.slot.BookingURL != nil {
				fmt.Fprintf(sh.out, "booking %s %s: %s\n", sh.picked.date, sh.picked.slot.Time, *sh.picked.slot.BookingURL)
			}
			continue
		default:
			fmt.Fprintf(sh.out, "unknown command %q, ? for help\n", fields[0])
			continue
		}
		sh.render()
	}
}

func (sh *shell) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, calendarview.ErrNavigationDisabled):
		fmt.Fprintln(sh.out, "no more weeks in that direction")
	case errors.Is(err, calendarview.ErrDayNotFound):
		fmt.Fprintln(sh.out, "that day is not in this week")
	case errors.Is(err, calendarview.ErrSlotNotSelectable):
		fmt.Fprintln(sh.out, "that slot cannot be booked")
	case errors.Is(err, calendarview.ErrNoSpecialist):
		fmt.Fprintln(sh.out, "no specialist loaded")
	default:
		// load failures surface through State.Err in render
	}
}

func (sh *shell) render() {
	st := sh.view.State()
	switch st.Status {
	case calendarview.StatusError:
		fmt.Fprintf(sh.out, "%s (r to retry)\n", calendarview.ErrorMessage)
		return
	case calendarview.StatusIdle, calendarview.StatusLoading:
		fmt.Fprintln(sh.out, "loading...")
		return
	}

	data := st.Data
	fmt.Fprintf(sh.out, "%s, %s\n", data.SpecialistName, data.Location)
	if data.Address != "" || data.Phone != "" {
		fmt.Fprintf(sh.out, "%s  tel. %s\n", data.Address, data.Phone)
	}
	fmt.Fprintf(sh.out, "week of %s  [p]rev:%s  [n]ext:%s\n", data.CurrentWeekStart, onOff(st.CanPrev), onOff(st.CanNext))

	if st.Status == calendarview.StatusNoAvailability {
		fmt.Fprintln(sh.out, "no free slots this week, try the next one")
		return
	}

	for _, day := range data.Days {
		marker := " "
		if day.Date == st.SelectedDate {
			marker = "*"
		}
		free := 0
		for _, slot := range day.Slots {
			if slot.Selectable() {
				free++
			}
		}
		fmt.Fprintf(sh.out, "%s %s %-12s %d free\n", marker, day.Date, day.DayName, free)
	}

	if day, ok := st.SelectedDay(); ok {
		var times []string
		for _, slot := range day.Slots {
			if slot.Selectable() {
				times = append(times, slot.Time)
			}
		}
		fmt.Fprintf(sh.out, "%s: %s\n", day.Date, strings.Join(times, " "))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
