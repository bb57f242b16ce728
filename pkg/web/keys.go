package web

type requestIDKey struct{}
