package sms

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tekhe/dashboard-api/internal/model"
)

type fakeSMSRepo struct {
	records []*model.SMSRecord
}

func (f *fakeSMSRepo) Create(ctx context.Context, record *model.SMSRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeSMSRepo) ListByPhone(ctx context.Context, phone string) ([]*model.SMSRecord, error) {
	var out []*model.SMSRecord
	for _, r := range f.records {
		if r.Phone == phone {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSMSRepo) List(ctx context.Context, limit int) ([]*model.SMSRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

type fakeGateway struct {
	sent []string
	err  error
}

func (g *fakeGateway) Send(ctx context.Context, phone, content string) error {
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, content)
	return nil
}

func testAgent() *model.HealthAgent {
	a := &model.HealthAgent{
		FirstName:      "Moussa",
		Phone:          "+221771234567",
		EnrollmentCode: "482913",
		DownloadLink:   "https://app.tekhe.sn/download",
	}
	a.ID = uuid.New()
	return a
}

func TestSendEnrollment(t *testing.T) {
	repo := &fakeSMSRepo{}
	gateway := &fakeGateway{}
	svc := NewService(repo, gateway, zerolog.Nop())

	record, err := svc.SendEnrollment(context.Background(), testAgent())
	require.NoError(t, err)

	assert.Equal(t, model.SMSSent, record.Status)
	require.Len(t, gateway.sent, 1)
	assert.Contains(t, gateway.sent[0], "482913")
	assert.Contains(t, gateway.sent[0], "https://app.tekhe.sn/download")
	assert.Contains(t, gateway.sent[0], "Moussa")
	require.Len(t, repo.records, 1)
}

func TestSendEnrollmentGatewayFailureStillRecorded(t *testing.T) {
	repo := &fakeSMSRepo{}
	gateway := &fakeGateway{err: assert.AnError}
	svc := NewService(repo, gateway, zerolog.Nop())

	_, err := svc.SendEnrollment(context.Background(), testAgent())
	require.Error(t, err)

	require.Len(t, repo.records, 1, "undelivered messages still appear in history")
	assert.Equal(t, model.SMSPending, repo.records[0].Status)
}

func TestHistoryFiltersByPhone(t *testing.T) {
	repo := &fakeSMSRepo{}
	svc := NewService(repo, &fakeGateway{}, zerolog.Nop())

	first := testAgent()
	second := testAgent()
	second.Phone = "+221709876543"

	_, err := svc.SendEnrollment(context.Background(), first)
	require.NoError(t, err)
	_, err = svc.SendEnrollment(context.Background(), second)
	require.NoError(t, err)

	history, err := svc.History(context.Background(), first.Phone)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.Phone, history[0].Phone)
}

func TestRecentClampsLimit(t *testing.T) {
	repo := &fakeSMSRepo{}
	svc := NewService(repo, &fakeGateway{}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := svc.SendEnrollment(context.Background(), testAgent())
		require.NoError(t, err)
	}

	records, err := svc.Recent(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}
