// Package keeper dispatches /goal and /score commands: it turns a parsed
// command into reads and writes against the identity resolver and into a
// Slack-shaped response.
package keeper

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/gobridge/goalkeeper/command"
	"github.com/gobridge/goalkeeper/identity"
)

// Poster delivers a payload to a URL out of band: a request's response_url
// or the channel webhook.
type Poster interface {
	Post(ctx context.Context, url string, payload interface{}) error
}

// Runner runs fire-and-forget work decoupled from the request that caused
// it. The work's outcome is never reported back to the requester.
type Runner interface {
	Submit(name string, fn func(context.Context) error)
}

// Keeper is the goal service.
type Keeper struct {
	ids      *identity.Resolver
	poster   Poster
	tasks    Runner
	log      *zap.SugaredLogger
	webhook  string // channel webhook URL, "" disables announcements
	feedback string // UID shown in the help message
	now      func() time.Time
}

// New builds a Keeper. webhookURL may be empty; feedbackUser is the UID
// named in the help message.
func New(ids *identity.Resolver, poster Poster, tasks Runner, log *zap.SugaredLogger, webhookURL, feedbackUser string) *Keeper {
	return &Keeper{
		ids:      ids,
		poster:   poster,
		tasks:    tasks,
		log:      log,
		webhook:  webhookURL,
		feedback: feedbackUser,
		now:      time.Now,
	}
}

// Action keywords in priority order. The first pattern found anywhere in
// the body wins, even as a substring of a longer message.
var actions = []struct {
	name string
	re   *regexp.Regexp
}{
	{"help", regexp.MustCompile(`help`)},
	{"connect", regexp.MustCompile(`connect`)},
}

func (k *Keeper) action(body string) string {
	for _, a := range actions {
		if a.re.MatchString(body) {
			return a.name
		}
	}
	return ""
}

// Goal handles a /goal command:
//
//	/goal                  return the caller's current goal
//	/goal @user            return @user's current goal
//	/goal a new goal       set the caller's goal
//	/goal help             usage
//	/goal connect          connect prompt
func (k *Keeper) Goal(ctx context.Context, userID, userName, text string) Response {
	args := command.Parse(text)

	if !args.HasBody {
		return k.queryGoal(ctx, userID, args)
	}

	switch k.action(args.Body) {
	case "help":
		return Help(k.feedback)
	case "connect":
		known, err := k.ids.IsKnown(ctx, userID)
		if err != nil {
			return k.storeError("looking up caller", userID, err)
		}
		if known {
			return Error("You're already connected... try `/goal help` to get started.")
		}
		return ConnectPrompt()
	}

	if args.AddressedID != "" && args.AddressedID != userID {
		return Error("You can't set goals for <@" + args.AddressedID + ">.")
	}

	known, err := k.ids.IsKnown(ctx, userID)
	if err != nil {
		return k.storeError("looking up caller", userID, err)
	}
	if !known {
		return UnknownUser()
	}

	return k.setGoal(userID, args.Body)
}

// queryGoal answers "what is the goal" for the addressed user when one is
// mentioned, else for the caller.
func (k *Keeper) queryGoal(ctx context.Context, callerID string, args command.Args) Response {
	target := args.AddressedID
	if target == "" {
		known, err := k.ids.IsKnown(ctx, callerID)
		if err != nil {
			return k.storeError("looking up caller", callerID, err)
		}
		if !known {
			return UnknownUser()
		}
		target = callerID
	}

	rec, err := k.ids.Record(ctx, target)
	if err != nil {
		return k.storeError("looking up target", target, err)
	}
	if rec == nil {
		// a miss, not an auth failure
		return General("I don't know <@"+target+">.", false)
	}

	msg := "Goal for <@" + target + ">: " + rec.Goal
	if !rec.GoalSetAt.IsZero() {
		days := int(k.now().Sub(rec.GoalSetAt).Hours() / 24)
		msg += fmt.Sprintf(" (set %d days ago)", days)
	}
	return General(msg, false)
}

// setGoal acknowledges immediately; the store writes and the channel
// announcement run on the background worker, within Slack's response
// deadline nothing slow happens on the request path.
func (k *Keeper) setGoal(userID, goal string) Response {
	k.tasks.Submit("set-goal", func(ctx context.Context) error {
		if err := k.ids.SetGoal(ctx, userID, goal, k.now()); err != nil {
			return err
		}
		if k.webhook == "" {
			return nil
		}
		msg := fmt.Sprintf("<@%s> set a new goal: %s", userID, goal)
		if err := k.poster.Post(ctx, k.webhook, General(msg, true)); err != nil {
			return fmt.Errorf("announcing goal: %w", err)
		}
		return nil
	})
	return General("Ok, got it!", false)
}

// Score handles a /score command. Scores were never implemented.
func (k *Keeper) Score(ctx context.Context, userID, userName, text string) Response {
	return General("Who's keeping score?", false)
}

// Connect handles the interactive connect button. The ack goes to the
// response URL straight away; identity resolution can touch several sheets,
// so it runs in the background and its outcome is never reported back.
func (k *Keeper) Connect(ctx context.Context, userID, userName, responseURL string) {
	if err := k.poster.Post(ctx, responseURL, General("Ok, got it!", false)); err != nil {
		k.log.Errorw("posting connect ack", "user", userID, "error", err)
	}
	k.tasks.Submit("connect", func(ctx context.Context) error {
		_, err := k.ids.Resolve(ctx, userID, userName)
		return err
	})
}

func (k *Keeper) storeError(op, uid string, err error) Response {
	k.log.Errorw(op, "user", uid, "error", err)
	return Error("Something went wrong talking to the store, sorry. Try again in a bit.")
}
