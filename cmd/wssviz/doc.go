// Package main provides the entry point for wssviz.
//
// Usage:
//
//	wssviz render 4242 --caption "SPECjbb 2 core"
//	wssviz inspect 4242 -o json
//	wssviz watch 4242 --min-interval 5s
//	wssviz raw-mem 4242 4243
//	wssviz history list
//
// Exit status is 0 on success, 1 on failure and 2 on a usage error.
package main
