package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/teamdock-io/teamdock/internal/teams"
)

const maxTeamSlots = 10

var (
	state   ShellState
	onStart func()
	onExit  func()

	// Pre-allocated team menu slots
	teamSlots   [maxTeamSlots]*systray.MenuItem
	noTeamsItem *systray.MenuItem
	showItem    *systray.MenuItem
	updateItem  *systray.MenuItem
	quitItem    *systray.MenuItem

	// Maps slot index → team ID for display actions
	slotMu    sync.RWMutex
	slotTeams [maxTeamSlots]string

	// ready flips once onReady has built the menu. Update calls before
	// that (or in foreground mode, where no tray runs) are no-ops.
	readyMu sync.RWMutex
	ready   bool
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (launch the shell here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s ShellState, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTitle(titleFor(teams.GlobalBadge{}))
	systray.SetTooltip(formatTooltip(teams.GlobalBadge{}, 0))

	header := systray.AddMenuItem("Teamdock", "")
	header.Disable()

	systray.AddSeparator()

	// Pre-allocate team slots (hidden by default)
	for i := 0; i < maxTeamSlots; i++ {
		teamSlots[i] = systray.AddMenuItem("", "")
		teamSlots[i].Hide()
	}

	// "No teams" placeholder
	noTeamsItem = systray.AddMenuItem("No teams signed in", "")
	noTeamsItem.Disable()

	systray.AddSeparator()

	showItem = systray.AddMenuItem("Show Window", "Bring the Teamdock window to front")
	updateItem = systray.AddMenuItem("Check for Updates", "")
	quitItem = systray.AddMenuItem("Quit", "Shut down Teamdock")

	// Start the shell services
	if onStart != nil {
		onStart()
	}

	readyMu.Lock()
	ready = true
	readyMu.Unlock()

	if state != nil {
		list := state.Teams()
		UpdateBadge(state.Badge(), len(list))
		UpdateTeams(list)
	}

	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-showItem.ClickedCh:
			if state != nil {
				state.ShowWindow()
			}
		case <-updateItem.ClickedCh:
			if state != nil {
				state.CheckForUpdates()
			}
		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}

		// Team slot clicks
		case <-teamSlots[0].ClickedCh:
			displayTeamAtSlot(0)
		case <-teamSlots[1].ClickedCh:
			displayTeamAtSlot(1)
		case <-teamSlots[2].ClickedCh:
			displayTeamAtSlot(2)
		case <-teamSlots[3].ClickedCh:
			displayTeamAtSlot(3)
		case <-teamSlots[4].ClickedCh:
			displayTeamAtSlot(4)
		case <-teamSlots[5].ClickedCh:
			displayTeamAtSlot(5)
		case <-teamSlots[6].ClickedCh:
			displayTeamAtSlot(6)
		case <-teamSlots[7].ClickedCh:
			displayTeamAtSlot(7)
		case <-teamSlots[8].ClickedCh:
			displayTeamAtSlot(8)
		case <-teamSlots[9].ClickedCh:
			displayTeamAtSlot(9)
		}
	}
}

// displayTeamAtSlot makes the team assigned to the given menu slot primary.
func displayTeamAtSlot(slot int) {
	slotMu.RLock()
	teamID := slotTeams[slot]
	slotMu.RUnlock()

	if teamID == "" || state == nil {
		return
	}
	go state.DisplayTeam(teamID)
}

func isReady() bool {
	readyMu.RLock()
	defer readyMu.RUnlock()
	return ready
}

// UpdateTeams refreshes the per-team menu items.
func UpdateTeams(list []TeamInfo) {
	if !isReady() {
		return
	}
	slotMu.Lock()
	for i := 0; i < maxTeamSlots; i++ {
		slotTeams[i] = ""
	}
	for i, team := range list {
		if i >= maxTeamSlots {
			break
		}
		slotTeams[i] = team.TeamID
	}
	slotMu.Unlock()

	for i := 0; i < maxTeamSlots; i++ {
		teamSlots[i].Hide()
	}

	if len(list) == 0 {
		noTeamsItem.Show()
	} else {
		noTeamsItem.Hide()
		for i, team := range list {
			if i >= maxTeamSlots {
				break
			}
			teamSlots[i].SetTitle(formatTeamTitle(team))
			teamSlots[i].Show()
		}
	}
}

// UpdateBadge refreshes the tray title and tooltip from the global badge.
func UpdateBadge(badge teams.GlobalBadge, teamCount int) {
	if !isReady() {
		return
	}
	systray.SetTitle(titleFor(badge))
	systray.SetTooltip(formatTooltip(badge, teamCount))
}

// titleFor renders the tray's text state: a bullet at rest, the unread
// count when unread, and a starred count when highlighted.
func titleFor(badge teams.GlobalBadge) string {
	switch badge.Mode() {
	case teams.TrayHighlight:
		return fmt.Sprintf("●%d*", badge.UnreadHighlights)
	case teams.TrayUnread:
		return fmt.Sprintf("●%d", badge.Unread)
	default:
		return "●"
	}
}

func formatTooltip(badge teams.GlobalBadge, teamCount int) string {
	if badge.Unread == 0 {
		return fmt.Sprintf("Teamdock - %d teams", teamCount)
	}
	return fmt.Sprintf("Teamdock - %d teams, %d unread", teamCount, badge.Unread)
}

func formatTeamTitle(team TeamInfo) string {
	switch {
	case team.UnreadHighlights > 0:
		return fmt.Sprintf("● %s (%d*)", team.TeamName, team.UnreadHighlights)
	case team.Unread > 0:
		return fmt.Sprintf("● %s (%d)", team.TeamName, team.Unread)
	default:
		return fmt.Sprintf("● %s", team.TeamName)
	}
}
