package command

import (
	"errors"

	"github.com/jmcampanini/awr/internal/aws"
)

// Bundle collects every command that could be built for one record along with
// the shapes that were skipped.
type Bundle struct {
	Commands []Command
	Skipped  []*SkippedError
}

// IsEmpty reports whether no command was built.
func (b Bundle) IsEmpty() bool {
	return len(b.Commands) == 0
}

func (b *Bundle) add(cmds []Command, err error) {
	var skip *SkippedError
	if errors.As(err, &skip) {
		b.Skipped = append(b.Skipped, skip)
		return
	}
	b.Commands = append(b.Commands, cmds...)
}

// ForPullRequest builds the approval and merge commands for a pull request.
// A skipped shape never hides the others.
func ForPullRequest(sess aws.Session, pr aws.PullRequest) Bundle {
	var b Bundle
	b.add(ApprovalStateCommands(sess, pr))

	merge, err := MergeCommand(sess, pr)
	if err != nil {
		b.add(nil, err)
	} else {
		b.add([]Command{merge}, nil)
	}
	return b
}

// ForPipeline builds Approved and Rejected commands for every pending approval.
func ForPipeline(sess aws.Session, pending []aws.PendingApproval, summaries Summaries) Bundle {
	var b Bundle
	for _, approval := range pending {
		b.add(PipelineApprovalCommands(sess, approval, summaries))
	}
	return b
}
