package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpirePolicyFromTimeout(t *testing.T) {
	assert.Equal(t, ExpirePolicy{Kind: ExpireServerDefault}, ExpirePolicyFromTimeout(-1))
	assert.Equal(t, ExpirePolicy{Kind: ExpireNever}, ExpirePolicyFromTimeout(0))
	assert.Equal(t, ExpirePolicy{Kind: ExpireExplicit, Millis: 2000}, ExpirePolicyFromTimeout(2000))
}

func TestExpirePolicy_Duration(t *testing.T) {
	assert.Equal(t, time.Duration(0), ExpirePolicy{Kind: ExpireNever}.Duration(10*time.Second))
	assert.Equal(t, 2*time.Second, ExpirePolicy{Kind: ExpireExplicit, Millis: 2000}.Duration(10*time.Second))
	assert.Equal(t, 10*time.Second, ExpirePolicy{Kind: ExpireServerDefault}.Duration(10*time.Second))

	// A zero server default disables the timeout entirely.
	assert.Equal(t, time.Duration(0), ExpirePolicy{Kind: ExpireServerDefault}.Duration(0))

	// An unconfigured server default falls back to the builtin 5000ms.
	assert.Equal(t, 5*time.Second, ExpirePolicy{Kind: ExpireServerDefault}.Duration(-1))
}

func TestIconFromString(t *testing.T) {
	assert.Equal(t, IconNone, IconFromString("").Kind)
	assert.Equal(t, IconThemeName, IconFromString("dialog-information").Kind)
	assert.Equal(t, IconPath, IconFromString("/usr/share/icons/x.png").Kind)
	assert.Equal(t, IconFileURI, IconFromString("file:///tmp/x.png").Kind)
}

func TestUrgencyFromHints(t *testing.T) {
	assert.Equal(t, UrgencyNormal, UrgencyFromHints(nil))
	assert.Equal(t, UrgencyLow, UrgencyFromHints(map[string]HintValue{"urgency": ByteHint(0)}))
	assert.Equal(t, UrgencyCritical, UrgencyFromHints(map[string]HintValue{"urgency": ByteHint(2)}))
	assert.Equal(t, UrgencyCritical, UrgencyFromHints(map[string]HintValue{"urgency": IntHint(2)}))

	// Out-of-range and mistyped values fall back to normal
	assert.Equal(t, UrgencyNormal, UrgencyFromHints(map[string]HintValue{"urgency": ByteHint(9)}))
	assert.Equal(t, UrgencyNormal, UrgencyFromHints(map[string]HintValue{"urgency": StringHint("2")}))
}

func TestNotification_HasAction(t *testing.T) {
	n := &Notification{Actions: []Action{{Key: "default", Label: "Open"}, {Key: "dismiss", Label: "Dismiss"}}}
	assert.True(t, n.HasAction("default"))
	assert.True(t, n.HasAction("dismiss"))
	assert.False(t, n.HasAction("reply"))
}

func TestNotification_Clone(t *testing.T) {
	n := &Notification{
		ID:      7,
		Summary: "hello",
		Actions: []Action{{Key: "default", Label: "Open"}},
		Hints:   map[string]HintValue{"urgency": ByteHint(2)},
		Icon:    Icon{Kind: IconImageData, Data: []byte{1, 2, 3}},
	}

	c := n.Clone()
	c.Actions[0].Key = "changed"
	c.Hints["extra"] = BoolHint(true)
	c.Icon.Data[0] = 9

	assert.Equal(t, "default", n.Actions[0].Key)
	assert.NotContains(t, n.Hints, "extra")
	assert.Equal(t, byte(1), n.Icon.Data[0])
}
