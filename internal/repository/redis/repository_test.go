package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-servicequeue/internal/domain"
	repo "github.com/vogiaan1904/ticketbottle-servicequeue/internal/repository"
	"github.com/vogiaan1904/ticketbottle-servicequeue/pkg/logger"
)

func setupTestRepository(t *testing.T) (repo.QueueRepository, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	r := NewQueueRepository(db, logger.InitializeTestZapLogger())

	return r, mock
}

func testState(t *testing.T) (*repo.State, []byte, []byte, []byte) {
	t.Helper()

	st := &repo.State{
		Queues: map[string][]*domain.QueueEntry{
			"haircut": {
				{ID: "e1", UserID: "u1", ServiceID: "haircut", Position: 1, Status: domain.EntryStatusWaiting},
			},
		},
		ServiceTypes: domain.DefaultServiceTypes(),
		Config:       domain.DefaultQueueConfiguration(),
	}

	qRaw, err := json.Marshal(st.Queues)
	require.NoError(t, err)
	tRaw, err := json.Marshal(st.ServiceTypes)
	require.NoError(t, err)
	cRaw, err := json.Marshal(st.Config)
	require.NoError(t, err)

	return st, qRaw, tRaw, cRaw
}

func TestQueueRepository_LoadState_NotFound(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	mock.ExpectMGet("service_queues", "service_types", "queue_config").
		SetVal([]interface{}{nil, nil, nil})

	_, err := r.LoadState(context.Background())
	assert.ErrorIs(t, err, repo.ErrStateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_LoadState_RoundTrip(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	_, qRaw, tRaw, cRaw := testState(t)
	mock.ExpectMGet("service_queues", "service_types", "queue_config").
		SetVal([]interface{}{string(qRaw), string(tRaw), string(cRaw)})

	st, err := r.LoadState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	require.Len(t, st.Queues["haircut"], 1)
	assert.Equal(t, "e1", st.Queues["haircut"][0].ID)
	assert.Len(t, st.ServiceTypes, 4)
	require.NotNil(t, st.Config)
	assert.Equal(t, 50, st.Config.MaxQueueLength)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_LoadState_PartialState(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	_, _, _, cRaw := testState(t)
	mock.ExpectMGet("service_queues", "service_types", "queue_config").
		SetVal([]interface{}{nil, nil, string(cRaw)})

	st, err := r.LoadState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st.Queues)
	assert.Nil(t, st.ServiceTypes)
	require.NotNil(t, st.Config)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_LoadState_CorruptPayload(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	mock.ExpectMGet("service_queues", "service_types", "queue_config").
		SetVal([]interface{}{"{not json", nil, nil})

	_, err := r.LoadState(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, repo.ErrStateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_LoadState_RedisError(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	mock.ExpectMGet("service_queues", "service_types", "queue_config").
		SetErr(errors.New("connection refused"))

	_, err := r.LoadState(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, repo.ErrStateNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_SaveState_Transactional(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	st, qRaw, tRaw, cRaw := testState(t)
	mock.ExpectTxPipeline()
	mock.ExpectSet("service_queues", qRaw, 0).SetVal("OK")
	mock.ExpectSet("service_types", tRaw, 0).SetVal("OK")
	mock.ExpectSet("queue_config", cRaw, 0).SetVal("OK")
	mock.ExpectTxPipelineExec()

	require.NoError(t, r.SaveState(context.Background(), st))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_SaveState_Error(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	st, qRaw, tRaw, cRaw := testState(t)
	mock.ExpectTxPipeline()
	mock.ExpectSet("service_queues", qRaw, 0).SetVal("OK")
	mock.ExpectSet("service_types", tRaw, 0).SetVal("OK")
	mock.ExpectSet("queue_config", cRaw, 0).SetVal("OK")
	mock.ExpectTxPipelineExec().SetErr(errors.New("readonly replica"))

	err := r.SaveState(context.Background(), st)
	require.Error(t, err)
}

func TestQueueRepository_TargetedSaves(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	st, qRaw, tRaw, cRaw := testState(t)

	mock.ExpectSet("service_queues", qRaw, 0).SetVal("OK")
	require.NoError(t, r.SaveQueues(context.Background(), st.Queues))

	mock.ExpectSet("service_types", tRaw, 0).SetVal("OK")
	require.NoError(t, r.SaveServiceTypes(context.Background(), st.ServiceTypes))

	mock.ExpectSet("queue_config", cRaw, 0).SetVal("OK")
	require.NoError(t, r.SaveConfiguration(context.Background(), st.Config))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_SaveStatsSnapshot(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	snap := &repo.StatsSnapshot{
		PerService: map[string]repo.ServiceStatsSnapshot{
			"haircut": {Waiting: 2, InService: 1, AverageWait: 30, ThroughputPerHour: 2},
		},
	}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	mock.ExpectSet("queue_stats", raw, 0).SetVal("OK")
	require.NoError(t, r.SaveStatsSnapshot(context.Background(), snap))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueRepository_Ping(t *testing.T) {
	r, mock := setupTestRepository(t)
	defer mock.ClearExpect()

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, r.Ping(context.Background()))

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	assert.Error(t, r.Ping(context.Background()))
}
