// Package main provides the checkcheck CLI.
//
// checkcheck runs the security-habit survey, checks text message senders and
// links for smishing, sends e-mails to the analysis service and keeps a
// local diagnosis history.
//
// Usage:
//
//	checkcheck survey --answers answers.yaml
//	checkcheck check --phone +447700900123 --url https://bit.ly/x
//	checkcheck email message.eml
//	checkcheck history --user alice
//
// See --help for all available options.
package main

func main() {
	Execute()
}
