// version package reports build information set at link time, e.g
//
//	go build -ldflags "-X github.com/information-sharing-networks/kyc-demo/internal/version.version=v1.2.0"
package version

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info describes the running build
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	GitCommit string `json:"git_commit"`
}

// Get returns the build information
func Get() Info {
	return Info{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}
}
