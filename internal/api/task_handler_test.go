package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")
	bob := env.register("bob@example.com")
	token := env.token(alice)

	t.Run("creates task with caller as creator", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"Write report","description":"Q3","responsibles":[%d, 9999],"auditors":[%d]}`,
			bob.ID, alice.ID)
		w := env.do(http.MethodPost, "/tasks/", body, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decodeBody[TaskResponse](t, w)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, "Write report", resp.Title)
		require.NotNil(t, resp.Description)
		assert.Equal(t, "Q3", *resp.Description)
		assert.Equal(t, alice.ID, resp.Creator.ID)
		assert.Equal(t, []int64{bob.ID}, responseIDs(resp.Responsibles), "unknown ids are dropped")
		assert.Equal(t, []int64{alice.ID}, responseIDs(resp.Auditors))
		assert.True(t, resp.IsActive)
		assert.False(t, resp.IsExpired)
		assert.Nil(t, resp.CloseDate)
		assert.Nil(t, resp.ExpirationDate)
	})

	t.Run("expiration date accepts a bare date", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"Due","responsibles":[%d],"expiration_date":"2099-01-01"}`, bob.ID)
		w := env.do(http.MethodPost, "/tasks/", body, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decodeBody[TaskResponse](t, w)
		require.NotNil(t, resp.ExpirationDate)
		assert.Equal(t, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), resp.ExpirationDate.UTC())
	})

	t.Run("malformed expiration date", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"Due","responsibles":[%d],"expiration_date":"01/01/2099"}`, bob.ID)
		w := env.do(http.MethodPost, "/tasks/", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing responsibles", func(t *testing.T) {
		w := env.do(http.MethodPost, "/tasks/", `{"title":"No one"}`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody[shared.ErrorResponse](t, w).Error, "responsibles")
	})

	t.Run("responsibles resolve to nobody", func(t *testing.T) {
		w := env.do(http.MethodPost, "/tasks/", `{"title":"Ghosts","responsibles":[9998, 9999]}`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"title":"x","responsibles":[%d],"owner":1}`, bob.ID)
		w := env.do(http.MethodPost, "/tasks/", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires authentication", func(t *testing.T) {
		w := env.do(http.MethodPost, "/tasks/", `{"title":"x","responsibles":[1]}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTaskHandler_GetTask(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")
	bob := env.register("bob@example.com")

	created := env.do(http.MethodPost, "/tasks/",
		fmt.Sprintf(`{"title":"Shared","responsibles":[%d]}`, bob.ID), env.token(alice))
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	task := decodeBody[TaskResponse](t, created)

	t.Run("any authenticated user can read", func(t *testing.T) {
		w := env.do(http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), "", env.token(bob))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, task.ID, decodeBody[TaskResponse](t, w).ID)
	})

	t.Run("not found", func(t *testing.T) {
		w := env.do(http.MethodGet, "/tasks/424242", "", env.token(bob))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Task not found", decodeBody[shared.ErrorResponse](t, w).Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, id := range []string{"abc", "0", "-3"} {
			w := env.do(http.MethodGet, "/tasks/"+id, "", env.token(bob))
			assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
		}
	})
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")
	bob := env.register("bob@example.com")
	carol := env.register("carol@example.com")
	root := env.superuser("root@example.com")

	newTask := func(t *testing.T) TaskResponse {
		t.Helper()
		body := fmt.Sprintf(`{"title":"Draft","description":"first","responsibles":[%d],"auditors":[%d]}`,
			bob.ID, carol.ID)
		w := env.do(http.MethodPost, "/tasks/", body, env.token(alice))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decodeBody[TaskResponse](t, w)
	}
	path := func(task TaskResponse) string { return fmt.Sprintf("/tasks/%d", task.ID) }

	t.Run("creator patches present fields only", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"title":"Final"}`, env.token(alice))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody[TaskResponse](t, w)
		assert.Equal(t, "Final", resp.Title)
		require.NotNil(t, resp.Description)
		assert.Equal(t, "first", *resp.Description)
		assert.Equal(t, []int64{bob.ID}, responseIDs(resp.Responsibles))
		assert.Equal(t, []int64{carol.ID}, responseIDs(resp.Auditors))
	})

	t.Run("explicit null clears description and auditors", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"description":null,"auditors":null}`, env.token(alice))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody[TaskResponse](t, w)
		assert.Nil(t, resp.Description)
		assert.Empty(t, resp.Auditors)
	})

	t.Run("expiration date patch accepts a bare date", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"expiration_date":"2024-01-01"}`, env.token(alice))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody[TaskResponse](t, w)
		require.NotNil(t, resp.ExpirationDate)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), resp.ExpirationDate.UTC())
		assert.True(t, resp.IsExpired)
	})

	t.Run("finishing closes the task", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"finished":true}`, env.token(alice))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody[TaskResponse](t, w)
		assert.False(t, resp.IsActive)
		assert.NotNil(t, resp.CloseDate)
	})

	t.Run("non-creator is forbidden", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"title":"Hijacked"}`, env.token(bob))
		assert.Equal(t, http.StatusForbidden, w.Code)

		get := env.do(http.MethodGet, path(task), "", env.token(bob))
		assert.Equal(t, "Draft", decodeBody[TaskResponse](t, get).Title)
		assert.Len(t, env.logs.EntriesWithMessage("task access denied"), 1)
		env.logs.Clear()
	})

	t.Run("superuser may reassign creator", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), fmt.Sprintf(`{"creator_id":%d}`, carol.ID), env.token(root))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, carol.ID, decodeBody[TaskResponse](t, w).Creator.ID)
	})

	t.Run("creator may not reassign creator", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), fmt.Sprintf(`{"creator_id":%d}`, carol.ID), env.token(alice))
		assert.Equal(t, http.StatusForbidden, w.Code)
		env.logs.Clear()
	})

	t.Run("empty responsibles rejected", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"responsibles":[]}`, env.token(alice))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		task := newTask(t)
		w := env.do(http.MethodPatch, path(task), `{"is_active":false}`, env.token(alice))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing task", func(t *testing.T) {
		w := env.do(http.MethodPatch, "/tasks/999999", `{"title":"x"}`, env.token(alice))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")
	bob := env.register("bob@example.com")

	w := env.do(http.MethodPost, "/tasks/", fmt.Sprintf(`{"title":"Doomed","responsibles":[%d]}`, bob.ID),
		env.token(alice))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decodeBody[TaskResponse](t, w)
	path := fmt.Sprintf("/tasks/%d", task.ID)

	w = env.do(http.MethodDelete, path, "", env.token(bob))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodDelete, path, "", env.token(alice))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	deleted := decodeBody[TaskResponse](t, w)
	assert.Equal(t, task.ID, deleted.ID)
	assert.Equal(t, "Doomed", deleted.Title)
	assert.Equal(t, []int64{bob.ID}, responseIDs(deleted.Responsibles))

	w = env.do(http.MethodGet, path, "", env.token(alice))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, path, "", env.token(alice))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	alice := env.register("alice@example.com")
	bob := env.register("bob@example.com")

	past := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	future := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)

	for _, body := range []string{
		fmt.Sprintf(`{"title":"Buy milk","responsibles":[%d],"expiration_date":%q}`, bob.ID, past),
		fmt.Sprintf(`{"title":"Buy bread","responsibles":[%d],"expiration_date":%q}`, bob.ID, future),
		fmt.Sprintf(`{"title":"Call mom","responsibles":[%d]}`, alice.ID),
	} {
		w := env.do(http.MethodPost, "/tasks/", body, env.token(alice))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w := env.do(http.MethodPost, "/tasks/", fmt.Sprintf(`{"title":"Bob's own","responsibles":[%d]}`, bob.ID),
		env.token(bob))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	titles := func(t *testing.T, query string) []string {
		t.Helper()
		w := env.do(http.MethodGet, "/tasks/"+query, "", env.token(bob))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []string
		for _, task := range decodeBody[[]TaskResponse](t, w) {
			out = append(out, task.Title)
		}
		return out
	}

	today := time.Now().UTC().Format(DateLayout)

	t.Run("all tasks", func(t *testing.T) {
		assert.Len(t, titles(t, ""), 4)
	})

	t.Run("without trailing slash", func(t *testing.T) {
		w := env.do(http.MethodGet, "/tasks", "", env.token(bob))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[[]TaskResponse](t, w), 4)
	})

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Buy milk", "Buy bread"}, titles(t, "?title=BUY"))
	})

	t.Run("creator", func(t *testing.T) {
		assert.Equal(t, []string{"Bob's own"}, titles(t, fmt.Sprintf("?creator_id=%d", bob.ID)))
	})

	t.Run("expired", func(t *testing.T) {
		assert.Equal(t, []string{"Buy milk"}, titles(t, "?expired=true"))
		assert.Len(t, titles(t, "?expired=false"), 3)
	})

	t.Run("created today", func(t *testing.T) {
		assert.Len(t, titles(t, "?start_date="+today+"&end_date="+today), 4)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		w := env.do(http.MethodGet, "/tasks/?title=nothing-matches", "", env.token(bob))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("bad query parameters", func(t *testing.T) {
		for _, q := range []string{"?start_date=10-01-2024", "?end_date=tomorrow", "?creator_id=x", "?expired=maybe"} {
			w := env.do(http.MethodGet, "/tasks/"+q, "", env.token(bob))
			assert.Equal(t, http.StatusBadRequest, w.Code, "query %s", q)
		}
	})
}
