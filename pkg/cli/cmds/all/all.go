// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/adclink/pkg/cli/cmds/actuator"
	_ "github.com/robotalks/adclink/pkg/cli/cmds/view"
)
