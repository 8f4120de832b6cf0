package push

import (
	"context"
	"time"

	notificationRepo "remindly/database/repository/notification"
	"remindly/models"

	"go.uber.org/zap"
)

type fakeTransport struct {
	sendID    string
	sendErr   error
	sendCalls int
	lastToken string

	multiOutcomes []SendOutcome
	multiErr      error
	multiCalls    int
	lastTokens    []string

	topicID    string
	topicErr   error
	topicCalls int
	lastTopic  string
}

func (f *fakeTransport) Send(ctx context.Context, token string, payload models.NotificationPayload) (string, error) {
	f.sendCalls++
	f.lastToken = token
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return f.sendID, nil
}

func (f *fakeTransport) SendMulticast(ctx context.Context, tokens []string, payload models.NotificationPayload) ([]SendOutcome, error) {
	f.multiCalls++
	f.lastTokens = tokens
	if f.multiErr != nil {
		return nil, f.multiErr
	}
	if f.multiOutcomes != nil {
		return f.multiOutcomes, nil
	}
	outcomes := make([]SendOutcome, 0, len(tokens))
	for i, tok := range tokens {
		outcomes = append(outcomes, SendOutcome{Token: tok, Success: true, MessageID: "msg-" + string(rune('a'+i))})
	}
	return outcomes, nil
}

func (f *fakeTransport) SendTopic(ctx context.Context, topic string, payload models.NotificationPayload) (string, error) {
	f.topicCalls++
	f.lastTopic = topic
	if f.topicErr != nil {
		return "", f.topicErr
	}
	return f.topicID, nil
}

type fakeTokenRepo struct {
	active        map[string][]models.DeviceToken
	deactivated   []string
	deactivateErr error
	lookupErr     error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{active: make(map[string][]models.DeviceToken)}
}

func (f *fakeTokenRepo) addActive(userID string, tokens ...string) {
	for _, tok := range tokens {
		f.active[userID] = append(f.active[userID], models.DeviceToken{
			ID: "row-" + tok, UserID: userID, Token: tok,
			DeviceType: models.DeviceTypeIOS, IsActive: true,
		})
	}
}

func (f *fakeTokenRepo) Save(ctx context.Context, userID, token string, deviceType models.DeviceType) (*models.DeviceToken, error) {
	row := models.DeviceToken{ID: "row-" + token, UserID: userID, Token: token, DeviceType: deviceType, IsActive: true}
	f.active[userID] = append(f.active[userID], row)
	return &row, nil
}

func (f *fakeTokenRepo) Deactivate(ctx context.Context, token string) error {
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	f.deactivated = append(f.deactivated, token)
	return nil
}

func (f *fakeTokenRepo) DeactivateForUser(ctx context.Context, userID, token string) error {
	f.deactivated = append(f.deactivated, token)
	return nil
}

func (f *fakeTokenRepo) ActiveForUser(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.active[userID], nil
}

func (f *fakeTokenRepo) ActiveForUsers(ctx context.Context, userIDs []string) ([]models.DeviceToken, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var rows []models.DeviceToken
	for _, id := range userIDs {
		rows = append(rows, f.active[id]...)
	}
	return rows, nil
}

func (f *fakeTokenRepo) AllActive(ctx context.Context) ([]models.DeviceToken, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var rows []models.DeviceToken
	for _, userRows := range f.active {
		rows = append(rows, userRows...)
	}
	return rows, nil
}

type fakeGuestRepo struct {
	device      *models.GuestDevice
	lookupErr   error
	deactivated []string
}

func (f *fakeGuestRepo) Upsert(ctx context.Context, deviceID, firebaseToken, timezone string) (*models.GuestDevice, error) {
	f.device = &models.GuestDevice{ID: "g-1", DeviceID: deviceID, FirebaseToken: firebaseToken, Timezone: timezone, IsActive: true}
	return f.device, nil
}

func (f *fakeGuestRepo) ByDeviceID(ctx context.Context, deviceID string) (*models.GuestDevice, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.device, nil
}

func (f *fakeGuestRepo) Deactivate(ctx context.Context, deviceID string) error {
	f.deactivated = append(f.deactivated, deviceID)
	return nil
}

type fakeFeedRepo struct {
	userRecords  map[string][]models.Notification
	guestRecords map[string][]models.Notification

	// txnErrs is consumed one per CreateForEventTxn call; nil entries succeed.
	txnErrs  []error
	txnCalls int
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{
		userRecords:  make(map[string][]models.Notification),
		guestRecords: make(map[string][]models.Notification),
	}
}

func (f *fakeFeedRepo) CreateForUser(ctx context.Context, userID string, n models.Notification) (string, error) {
	n.UserID = userID
	if n.ID == "" {
		n.ID = "n-1"
	}
	f.userRecords[userID] = append(f.userRecords[userID], n)
	return n.ID, nil
}

func (f *fakeFeedRepo) CreateForGuest(ctx context.Context, deviceID string, n models.Notification) (string, error) {
	n.DeviceID = deviceID
	if n.ID == "" {
		n.ID = "n-1"
	}
	f.guestRecords[deviceID] = append(f.guestRecords[deviceID], n)
	return n.ID, nil
}

func (f *fakeFeedRepo) ListForUser(ctx context.Context, userID string, opts models.ListOptions) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range f.userRecords[userID] {
		if opts.Status != "" && n.Status != opts.Status {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeFeedRepo) ListForGuest(ctx context.Context, deviceID string, opts models.ListOptions) ([]models.Notification, error) {
	return f.guestRecords[deviceID], nil
}

func (f *fakeFeedRepo) MarkRead(ctx context.Context, userID, notificationID string) (*models.Notification, error) {
	for i, n := range f.userRecords[userID] {
		if n.ID == notificationID {
			f.userRecords[userID][i].Status = models.NotificationRead
			return &f.userRecords[userID][i], nil
		}
	}
	return nil, nil
}

func (f *fakeFeedRepo) MarkGuestRead(ctx context.Context, deviceID, notificationID string) (*models.Notification, error) {
	for i, n := range f.guestRecords[deviceID] {
		if n.ID == notificationID {
			f.guestRecords[deviceID][i].Status = models.NotificationRead
			return &f.guestRecords[deviceID][i], nil
		}
	}
	return nil, nil
}

func (f *fakeFeedRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	var flipped int64
	for i, n := range f.userRecords[userID] {
		if n.Status == models.NotificationUnread {
			f.userRecords[userID][i].Status = models.NotificationRead
			flipped++
		}
	}
	return flipped, nil
}

func (f *fakeFeedRepo) CreateForEventTxn(ctx context.Context, userID, eventID string, n models.Notification) (*models.Notification, error) {
	f.txnCalls++
	if len(f.txnErrs) > 0 {
		err := f.txnErrs[0]
		f.txnErrs = f.txnErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	n.UserID = userID
	n.EventID = eventID
	if n.ID == "" {
		n.ID = "n-evt"
	}
	f.userRecords[userID] = append(f.userRecords[userID], n)
	return &n, nil
}

// Interface conformance checks for the fakes.
var _ Transport = (*fakeTransport)(nil)
var _ notificationRepo.NotificationRepository = (*fakeFeedRepo)(nil)

func newTestDispatcher(t *fakeTransport, tokens *fakeTokenRepo, guests *fakeGuestRepo, feed *fakeFeedRepo) *DefaultDispatchService {
	var transport Transport
	if t != nil {
		transport = t
	}
	return &DefaultDispatchService{
		Transport:       transport,
		Tokens:          tokens,
		Guests:          guests,
		Feed:            feed,
		Validator:       &Validator{MinLen: 5, MaxLen: 64},
		Logger:          zap.NewNop(),
		MaxRetries:      3,
		RetryBackoff:    time.Millisecond,
		NotificationTTL: time.Hour,
	}
}
