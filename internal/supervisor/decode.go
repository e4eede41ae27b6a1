package supervisor

import (
	"fmt"
	"sort"

	"github.com/openvehicle/canagent/internal/dbc"
	"github.com/openvehicle/canagent/internal/domain"
)

// printDecoded looks up frame.ArbID in db and writes its decoded signals
// to stdout, one line per frame. Frames with no matching message
// definition are printed with their raw bytes instead.
func printDecoded(db *dbc.Database, frame domain.Frame) {
	msg := findMessage(db, frame.ArbID)
	if msg == nil {
		fmt.Printf("%s id=%#x dlc=%d data=% x (undefined)\n",
			frame.Timestamp.Format("15:04:05.000"), frame.ArbID, frame.DLC, frame.Data)
		return
	}

	values, err := msg.Decode(frame.Data)
	if err != nil {
		fmt.Printf("%s id=%#x %s decode error: %v\n", frame.Timestamp.Format("15:04:05.000"), frame.ArbID, msg.Name, err)
		return
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%s %s", frame.Timestamp.Format("15:04:05.000"), msg.Name)
	for _, name := range names {
		fmt.Printf(" %s=%.3f", name, values[name])
	}
	fmt.Println()
}

func findMessage(db *dbc.Database, arbID uint32) *dbc.Message {
	for i := range db.Messages {
		if db.Messages[i].FrameID == arbID {
			return &db.Messages[i]
		}
	}
	return nil
}
