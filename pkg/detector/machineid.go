package detector

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "irsense"

// MachineID returns an id unique to this machine which does not expose
// the raw machine id. It falls back to the host name.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil && id != "" {
		return id[:12]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
