// Package storetest opens throwaway sqlite-backed stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/store"
)

var (
	seq   atomic.Int64
	bgCtx = context.Background()
)

// Open returns a migrated Store backed by a private in-memory sqlite database.
func Open(t testing.TB) *store.Store {
	t.Helper()
	c := config.Default()
	c.DBDriver = "sqlite"
	c.LogLevel = "silent"
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	c.DatabaseURI = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := config.Open(c)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(db)
}

// Fixture seeds rows with deterministic, strictly increasing publication times.
type Fixture struct {
	T     testing.TB
	Store *store.Store
	clock time.Time
}

// NewFixture wraps s. Posts created through it are one minute apart.
func NewFixture(t testing.TB, s *store.Store) *Fixture {
	return &Fixture{T: t, Store: s, clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// User creates a user or fails the test.
func (f *Fixture) User(username string) models.User {
	f.T.Helper()
	u := models.User{Username: username}
	if err := f.Store.CreateUser(bgCtx, &u); err != nil {
		f.T.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// Group creates a group or fails the test.
func (f *Fixture) Group(title, slug string) models.Group {
	f.T.Helper()
	g := models.Group{Title: title, Slug: slug, Description: title + " description"}
	if err := f.Store.CreateGroup(bgCtx, &g); err != nil {
		f.T.Fatalf("create group %s: %v", slug, err)
	}
	return g
}

// Post creates a post by author, optionally in group, or fails the test.
func (f *Fixture) Post(author models.User, text string, group *models.Group) models.Post {
	f.T.Helper()
	f.clock = f.clock.Add(time.Minute)
	p := models.Post{Text: text, AuthorID: author.ID, PubDate: f.clock}
	if group != nil {
		id := group.ID
		p.GroupID = &id
	}
	if err := f.Store.CreatePost(bgCtx, &p); err != nil {
		f.T.Fatalf("create post: %v", err)
	}
	return p
}

// Comment creates a comment on post by author or fails the test.
func (f *Fixture) Comment(post models.Post, author models.User, text string) models.Comment {
	f.T.Helper()
	f.clock = f.clock.Add(time.Second)
	id := post.ID
	c := models.Comment{PostID: &id, AuthorID: author.ID, Text: text, Created: f.clock}
	if err := f.Store.CreateComment(bgCtx, &c); err != nil {
		f.T.Fatalf("create comment: %v", err)
	}
	return c
}

// Follow makes user follow author or fails the test.
func (f *Fixture) Follow(user, author models.User) {
	f.T.Helper()
	if err := f.Store.Follow(bgCtx, user.ID, author.ID); err != nil {
		f.T.Fatalf("follow: %v", err)
	}
}
