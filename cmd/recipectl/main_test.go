package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/testhelpers"
)

type fakeSources struct {
	external  *httptest.Server
	backend   *httptest.Server
	approvals int32
	role      string
}

func newFakeSources(t *testing.T, role string) *fakeSources {
	t.Helper()
	f := &fakeSources{role: role}

	ext := http.NewServeMux()
	ext.HandleFunc("/recipes", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testhelpers.Envelope(testhelpers.ExternalRecord(5, "Soup")))
	})
	f.external = httptest.NewServer(ext)
	t.Cleanup(f.external.Close)

	be := http.NewServeMux()
	be.HandleFunc("/login.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"success":true,"user":{"id":1,"name":"Root","email":"root@example.com","role":%q}}`, f.role)
	})
	be.HandleFunc("/get_all_recipes.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testhelpers.Envelope(testhelpers.BackendRecord(9, 2, "Stew", "Public", 1)))
	})
	be.HandleFunc("/get_user_recipes.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testhelpers.Envelope(testhelpers.BackendRecord(11, 1, "Toast", "Only me", 1)))
	})
	be.HandleFunc("/get_pending_recipes.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testhelpers.Envelope(testhelpers.BackendRecord(3, 2, "Pie", "Public", 0)))
	})
	be.HandleFunc("/approve_recipe.php", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.approvals, 1)
		fmt.Fprint(w, `{"success":true,"error":""}`)
	})
	f.backend = httptest.NewServer(be)
	t.Cleanup(f.backend.Close)
	return f
}

func (f *fakeSources) run(args ...string) (string, error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--external-url", f.external.URL,
		"--backend-url", f.backend.URL,
		"--log-level", "error",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListAsGuest(t *testing.T) {
	f := newFakeSources(t, "user")

	out, err := f.run("list")

	require.NoError(t, err)
	assert.Contains(t, out, "Soup")
	assert.Contains(t, out, "Stew")
	assert.NotContains(t, out, "Toast")
}

func TestListIncludesOwnRecipes(t *testing.T) {
	f := newFakeSources(t, "user")

	out, err := f.run("--email", "root@example.com", "--password", "pw", "list", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Toast"`)
	assert.Contains(t, out, `"imageUrl": "http://10.0.2.2/MyRecipeUploads/11.jpg"`)
}

func TestApprove(t *testing.T) {
	f := newFakeSources(t, "admin")

	out, err := f.run("--email", "root@example.com", "--password", "pw", "approve", "3", "42", "3")

	require.Error(t, err)
	assert.Equal(t, "1 of 2 recipes could not be processed", err.Error())
	assert.Contains(t, out, "3: approved")
	assert.Contains(t, out, "42: recipe 42 not found")
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.approvals))
}

func TestPendingRequiresAdmin(t *testing.T) {
	f := newFakeSources(t, "user")

	_, err := f.run("--email", "root@example.com", "--password", "pw", "pending")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an admin account")
}

func TestMineRequiresLogin(t *testing.T) {
	f := newFakeSources(t, "user")

	_, err := f.run("mine")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an account")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "7", "3"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, ids)

	_, err = parseIDs([]string{"abc"})
	assert.EqualError(t, err, `invalid recipe id "abc"`)

	_, err = parseIDs([]string{"0"})
	assert.Error(t, err)
}
