package identity

import (
	"net/url"
	"testing"
)

func TestDocumentWildcards(t *testing.T) {
	t.Run("single statement with both wildcards", func(t *testing.T) {
		doc := url.QueryEscape(`{"Statement":[{"Effect":"Allow","Action":"*","Resource":"*"}]}`)
		action, resource, full := documentWildcards(doc)
		if !action || !resource || !full {
			t.Errorf("got action=%v resource=%v full=%v; want all true", action, resource, full)
		}
	})

	t.Run("wildcards split across statements", func(t *testing.T) {
		doc := url.QueryEscape(`{"Statement":[
			{"Effect":"Allow","Action":"*","Resource":"arn:aws:s3:::reports/*"},
			{"Effect":"Allow","Action":["iam:GetUser"],"Resource":"*"}
		]}`)
		action, resource, full := documentWildcards(doc)
		if !action || !resource {
			t.Errorf("got action=%v resource=%v; want both true", action, resource)
		}
		if full {
			t.Error("full = true; want false when no single statement carries both")
		}
	})

	t.Run("wildcards in array form", func(t *testing.T) {
		doc := url.QueryEscape(`{"Statement":{"Effect":"Allow","Action":["s3:GetObject","*"],"Resource":["*"]}}`)
		action, resource, full := documentWildcards(doc)
		if !action || !resource || !full {
			t.Errorf("got action=%v resource=%v full=%v; want all true", action, resource, full)
		}
	})

	t.Run("deny statements are ignored", func(t *testing.T) {
		doc := url.QueryEscape(`{"Statement":[{"Effect":"Deny","Action":"*","Resource":"*"}]}`)
		action, resource, full := documentWildcards(doc)
		if action || resource || full {
			t.Errorf("got action=%v resource=%v full=%v; want all false", action, resource, full)
		}
	})

	t.Run("unparseable document", func(t *testing.T) {
		action, resource, full := documentWildcards("%7Bnot-json")
		if action || resource || full {
			t.Errorf("got action=%v resource=%v full=%v; want all false", action, resource, full)
		}
	})
}
