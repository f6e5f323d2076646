package commandline

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	var (
		rules ReplaceRuleList
		ns    Strings
		fs    = pflag.NewFlagSet("test", pflag.ContinueOnError)
	)
	fs.VarP(&rules, "replace", "r", "")
	fs.Var(&ns, "ns", "")
	err := fs.Parse([]string{"-r", "^ST_ -> ", "--ns", "urn:a", "--ns", "urn:b", "-r", "Type$->Kind"})
	require.NoError(t, err)

	require.Equal(t, Strings{"urn:a", "urn:b"}, ns)
	require.Len(t, rules, 2)
	require.Equal(t, "TDFloat", rules[0].From.ReplaceAllString("ST_TDFloat", rules[0].To))
	require.Equal(t, "ItemKind", rules[1].From.ReplaceAllString("ItemType", rules[1].To))
}

func TestBadRule(t *testing.T) {
	_, err := ParseReplaceRule("no arrow")
	require.Error(t, err)
	_, err = ParseReplaceRule("([ -> x")
	require.Error(t, err)
}
