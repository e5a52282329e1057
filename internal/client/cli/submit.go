package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/evolveua/queuevault/internal/client/services"
)

// Submit registers the logged-in user for an event. The selector may be an
// event id or a 1-based position in the printed catalog; when omitted, the
// user is prompted after the catalog is shown.
func (a *App) Submit(ctx context.Context, selector string) error {
	events, err := a.catalog.Load(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}
	if len(events) == 0 {
		fmt.Println("No events are open for registration.")
		return nil
	}

	if selector == "" {
		for i, e := range events {
			fmt.Printf("%d. %s\n", i+1, e.Name)
		}
		selector, err = getSimpleText(a.reader, "Select an event (number or id)", os.Stdout)
		if err != nil {
			return err
		}
	}

	event, err := services.Select(events, selector)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	reg, err := a.regs.Submit(ctx, a.sess, *event)
	if err != nil {
		log.Printf("Registration failed: %s", err.Error())
		return err
	}

	fmt.Printf("Registered %s for %s\n", reg.Name, reg.EventName)
	return nil
}

func (a *App) list(ctx context.Context) {
	regs, err := a.regs.List(ctx, a.sess)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(regs) == 0 {
		fmt.Println("No registrations yet.")
		return
	}
	for i, r := range regs {
		fmt.Printf("%d. %s — %s (%s)\n", i+1, r.EventName, r.Name, r.Timestamp.Local().Format("2006-01-02 15:04"))
	}
}

func (a *App) stats(ctx context.Context) {
	st, err := a.regs.Stats(ctx, a.sess)
	if err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Printf("Total registrations: %d\n", st.TotalRegistrations)
	if !st.LastUpdated.IsZero() {
		fmt.Printf("Last updated: %s\n", st.LastUpdated.Local().Format("2006-01-02 15:04"))
	}
}

func (a *App) listEvents(ctx context.Context) {
	events, err := a.catalog.Load(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	if len(events) == 0 {
		fmt.Println("No events are open for registration.")
		return
	}
	for i, e := range events {
		fmt.Printf("%d. %s (%s)\n", i+1, e.Name, e.ID)
	}
}
