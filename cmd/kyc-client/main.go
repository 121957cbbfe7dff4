// kyc-client issues Sumsub verification session links from the command line.
package main

import "github.com/information-sharing-networks/kyc-demo/internal/cli"

func main() {
	cli.Execute()
}
