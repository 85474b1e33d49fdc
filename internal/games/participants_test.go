package games

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"pickleball/internal/apperr"
	"pickleball/internal/db"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func countByStatus(t *testing.T, conn *gorm.DB, gameID uuid.UUID, status ParticipantStatus) int64 {
	t.Helper()
	var count int64
	err := conn.Model(&db.GameParticipant{}).
		Where("game_id = ? AND status = ?", gameID, string(status)).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count participants: %v", err)
	}
	return count
}

func TestJoinCreatesPendingRequest(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 4)

	joined, err := svc.Join(ctx, player.ID, game.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Status != ParticipantPending || joined.UserID != player.ID || joined.GameID != game.ID {
		t.Fatalf("unexpected participant %#v", joined)
	}
	if gameStatus(t, conn, game.ID) != StatusOpen {
		t.Fatalf("join must not change game status")
	}
}

func TestJoinMissingGame(t *testing.T) {
	svc, conn := newTestService(t)
	player := createUser(t, conn, "player")
	_, err := svc.Join(context.Background(), player.ID, uuid.New())
	expectCode(t, err, apperr.CodeGameNotFound)
}

// A four-player game has three joinable slots; a fourth approval is refused.
func TestApprovalStopsAtJoinableSlots(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	game := createGame(t, svc, host.ID, 4)

	var requests []ParticipantView
	for i := 0; i < 4; i++ {
		player := createUser(t, conn, fmt.Sprintf("player%d", i))
		joined, err := svc.Join(ctx, player.ID, game.ID)
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		requests = append(requests, joined)
	}

	for i := 0; i < 3; i++ {
		decided, err := svc.Decide(ctx, host.ID, game.ID, requests[i].ID, "approved")
		if err != nil {
			t.Fatalf("approve %d: %v", i, err)
		}
		if decided.Status != ParticipantApproved {
			t.Fatalf("expected approved, got %s", decided.Status)
		}
	}
	if gameStatus(t, conn, game.ID) != StatusFull {
		t.Fatalf("expected full after third approval")
	}

	_, err := svc.Decide(ctx, host.ID, game.ID, requests[3].ID, "approved")
	appErr := expectCode(t, err, apperr.CodeGameFull)
	if appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %s", appErr.Kind)
	}
	if got := countByStatus(t, conn, game.ID, ParticipantApproved); got != 3 {
		t.Fatalf("expected 3 approved, got %d", got)
	}
	if got := countByStatus(t, conn, game.ID, ParticipantPending); got != 1 {
		t.Fatalf("refused participant should stay pending, got %d pending", got)
	}
}

func TestDuplicateJoinSurfacesExistingStatus(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 4)

	first, err := svc.Join(ctx, player.ID, game.ID)
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err = svc.Join(ctx, player.ID, game.ID)
	appErr := expectCode(t, err, apperr.CodeDuplicateJoin)
	if appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict, got %s", appErr.Kind)
	}
	if appErr.Details["status"] != string(ParticipantPending) {
		t.Fatalf("expected pending status in details, got %v", appErr.Details)
	}
	if appErr.Details["participant_id"] != first.ID.String() {
		t.Fatalf("expected existing participant id, got %v", appErr.Details)
	}

	if _, err := svc.Decide(ctx, host.ID, game.ID, first.ID, "rejected"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = svc.Join(ctx, player.ID, game.ID)
	appErr = expectCode(t, err, apperr.CodeDuplicateJoin)
	if appErr.Details["status"] != string(ParticipantRejected) {
		t.Fatalf("expected rejected status in details, got %v", appErr.Details)
	}
}

func TestCreatorCannotJoinOwnGame(t *testing.T) {
	svc, conn := newTestService(t)
	host := createUser(t, conn, "host")
	game := createGame(t, svc, host.ID, 4)

	_, err := svc.Join(context.Background(), host.ID, game.ID)
	appErr := expectCode(t, err, apperr.CodeCannotJoinOwnGame)
	if appErr.Kind != apperr.KindInvalidOperation {
		t.Fatalf("expected invalid operation, got %s", appErr.Kind)
	}
	if got := countByStatus(t, conn, game.ID, ParticipantPending); got != 0 {
		t.Fatalf("no participant row expected, got %d", got)
	}
}

func TestJoinCancelledGame(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 4)
	if _, err := svc.Update(ctx, host.ID, game.ID, UpdateInput{Status: strPtr("cancelled")}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := svc.Join(ctx, player.ID, game.ID)
	appErr := expectCode(t, err, apperr.CodeGameNotJoinable)
	if appErr.Kind != apperr.KindInvalidOperation {
		t.Fatalf("expected invalid operation, got %s", appErr.Kind)
	}
	if !strings.Contains(appErr.Message, "cancelled") {
		t.Fatalf("expected message to mention cancelled, got %q", appErr.Message)
	}
}

// The sqlite test handle holds a single connection, so the racing
// transactions run one after another and the row lock itself is not
// exercised here; the count-then-write outcome is.
func TestConcurrentApprovalsForLastSlot(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	game := createGame(t, svc, host.ID, 2)

	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		player := createUser(t, conn, fmt.Sprintf("player%d", i))
		joined, err := svc.Join(ctx, player.ID, game.ID)
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		ids = append(ids, joined.ID)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.Decide(ctx, host.ID, game.ID, id, "approved")
		}(i, id)
	}
	wg.Wait()

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperr.New(apperr.KindConflict, apperr.CodeGameFull, "")):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || full != 1 {
		t.Fatalf("expected one success and one full conflict, got %d/%d", succeeded, full)
	}
	if got := countByStatus(t, conn, game.ID, ParticipantApproved); got != 1 {
		t.Fatalf("capacity exceeded: %d approved", got)
	}
	if gameStatus(t, conn, game.ID) != StatusFull {
		t.Fatalf("expected full game")
	}
}

// Same single-connection caveat as TestConcurrentApprovalsForLastSlot.
func TestConcurrentJoinsBySameUser(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 8)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Join(ctx, player.ID, game.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		expectCode(t, err, apperr.CodeDuplicateJoin)
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one join, got %d", succeeded)
	}
}

func TestJoinAgainstStaleOpenStatusFlipsToFull(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	first := createUser(t, conn, "first")
	late := createUser(t, conn, "late")
	game := createGame(t, svc, host.ID, 2)

	joined, err := svc.Join(ctx, first.ID, game.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "approved"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// Simulate a cached status that drifted back to open.
	if err := conn.Model(&db.Game{}).Where("id = ?", game.ID).Update("status", string(StatusOpen)).Error; err != nil {
		t.Fatalf("reset status: %v", err)
	}

	_, err = svc.Join(ctx, late.ID, game.ID)
	expectCode(t, err, apperr.CodeGameFull)
	if gameStatus(t, conn, game.ID) != StatusFull {
		t.Fatalf("expected status flipped to full by the refused join")
	}
	var rows int64
	conn.Model(&db.GameParticipant{}).Where("game_id = ? AND user_id = ?", game.ID, late.ID).Count(&rows)
	if rows != 0 {
		t.Fatalf("refused join must not create a row")
	}
}

func TestApproveRefusedOnStaleStatusFlipsToFull(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	game := createGame(t, svc, host.ID, 2)
	a := createUser(t, conn, "a")
	b := createUser(t, conn, "b")
	ja, err := svc.Join(ctx, a.ID, game.ID)
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	jb, err := svc.Join(ctx, b.ID, game.ID)
	if err != nil {
		t.Fatalf("join b: %v", err)
	}
	if _, err := svc.Decide(ctx, host.ID, game.ID, ja.ID, "approved"); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	if err := conn.Model(&db.Game{}).Where("id = ?", game.ID).Update("status", string(StatusOpen)).Error; err != nil {
		t.Fatalf("reset status: %v", err)
	}

	_, err = svc.Decide(ctx, host.ID, game.ID, jb.ID, "approved")
	expectCode(t, err, apperr.CodeGameFull)
	if gameStatus(t, conn, game.ID) != StatusFull {
		t.Fatalf("expected status flipped to full")
	}
}

func TestDecidePreconditions(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 4)
	other := createGame(t, svc, host.ID, 4)
	joined, err := svc.Join(ctx, player.ID, game.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = svc.Decide(ctx, host.ID, uuid.New(), joined.ID, "approved")
	expectCode(t, err, apperr.CodeGameNotFound)

	_, err = svc.Decide(ctx, host.ID, other.ID, joined.ID, "approved")
	expectCode(t, err, apperr.CodeParticipantNotFound)

	_, err = svc.Decide(ctx, player.ID, game.ID, joined.ID, "approved")
	expectCode(t, err, apperr.CodeForbidden)

	_, err = svc.Decide(ctx, host.ID, game.ID, joined.ID, "pending")
	appErr := expectCode(t, err, apperr.CodeInvalidInput)
	if appErr.Field != "status" {
		t.Fatalf("expected status field, got %s", appErr.Field)
	}
}

func TestRejectionLeavesGameStatus(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 2)
	joined, err := svc.Join(ctx, player.ID, game.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "approved"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rejected, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "REJECTED")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != ParticipantRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if gameStatus(t, conn, game.ID) != StatusFull {
		t.Fatalf("rejection must not change game status")
	}

	again, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "rejected")
	if err != nil || again.Status != ParticipantRejected {
		t.Fatalf("re-rejection should succeed, got %v", err)
	}
}

func TestReapprovalDoesNotCountItself(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	game := createGame(t, svc, host.ID, 2)
	joined, err := svc.Join(ctx, player.ID, game.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "approved"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "approved"); err != nil {
		t.Fatalf("re-approve on a full game should succeed: %v", err)
	}
}

func TestReapprovalRepairsStaleOpenStatus(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	game := createGame(t, svc, host.ID, 3)
	var participants []ParticipantView
	for _, name := range []string{"a", "b"} {
		player := createUser(t, conn, name)
		joined, err := svc.Join(ctx, player.ID, game.ID)
		if err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		if _, err := svc.Decide(ctx, host.ID, game.ID, joined.ID, "approved"); err != nil {
			t.Fatalf("approve %s: %v", name, err)
		}
		participants = append(participants, joined)
	}
	if err := conn.Model(&db.Game{}).Where("id = ?", game.ID).Update("status", string(StatusOpen)).Error; err != nil {
		t.Fatalf("reset status: %v", err)
	}

	again, err := svc.Decide(ctx, host.ID, game.ID, participants[0].ID, "approved")
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if again.Status != ParticipantApproved {
		t.Fatalf("expected approved, got %s", again.Status)
	}
	if got := countByStatus(t, conn, game.ID, ParticipantApproved); got != 2 {
		t.Fatalf("expected 2 approved, got %d", got)
	}
	if gameStatus(t, conn, game.ID) != StatusFull {
		t.Fatalf("expected re-approval to recompute status to full")
	}
}

func TestListParticipantsVisibility(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	stranger := createUser(t, conn, "stranger")
	game := createGame(t, svc, host.ID, 4)
	if _, err := svc.Join(ctx, player.ID, game.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	for _, caller := range []uuid.UUID{host.ID, player.ID} {
		rows, err := svc.ListParticipants(ctx, caller, game.ID)
		if err != nil {
			t.Fatalf("list as %s: %v", caller, err)
		}
		if len(rows) != 1 || rows[0].User == nil || rows[0].User.Name != "player" {
			t.Fatalf("unexpected roster %#v", rows)
		}
	}

	_, err := svc.ListParticipants(ctx, stranger.ID, game.ID)
	expectCode(t, err, apperr.CodeForbidden)

	_, err = svc.ListParticipants(ctx, host.ID, uuid.New())
	expectCode(t, err, apperr.CodeGameNotFound)
}

func TestListForUserDashboard(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	host := createUser(t, conn, "host")
	player := createUser(t, conn, "player")
	first := createGame(t, svc, host.ID, 4)
	second := createGame(t, svc, host.ID, 4)

	j1, err := svc.Join(ctx, player.ID, first.ID)
	if err != nil {
		t.Fatalf("join first: %v", err)
	}
	if _, err := svc.Join(ctx, player.ID, second.ID); err != nil {
		t.Fatalf("join second: %v", err)
	}
	if _, err := svc.Decide(ctx, host.ID, first.ID, j1.ID, "approved"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rows, err := svc.ListForUser(ctx, player.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	statuses := map[uuid.UUID]ParticipantStatus{}
	for _, row := range rows {
		if row.Game == nil || row.Game.Creator == nil || row.Game.Creator.ID != host.ID {
			t.Fatalf("expected game with creator summary, got %#v", row.Game)
		}
		statuses[row.GameID] = row.Status
	}
	if statuses[first.ID] != ParticipantApproved || statuses[second.ID] != ParticipantPending {
		t.Fatalf("unexpected statuses %v", statuses)
	}

	empty, err := svc.ListForUser(ctx, host.ID)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty dashboard for host, got %d (%v)", len(empty), err)
	}
}
