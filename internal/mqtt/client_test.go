package mqtt

import (
	"testing"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *MQTTClient {
	cfg := util.LoadTestConfig()
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestCoverCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	r := coverCommandExtractor(baseTopic)

	matches := r.FindStringSubmatch("loremTopic/cover/home_12/set")
	require.Len(t, matches, 3)
	assert.Equal("home_12", matches[1], "object id extract")
	assert.Equal("set", matches[2])

	matches = r.FindStringSubmatch("loremTopic/cover/30-sun/set_position")
	require.Len(t, matches, 3)
	assert.Equal("30-sun", matches[1])
	assert.Equal("set_position", matches[2])
}

func TestCoverCommandParseFail(t *testing.T) {

	r := coverCommandExtractor("loremTopic")

	for _, topic := range []string{
		"loremTopic/cover/12/state",
		"loremTopic/cover/12/position",
		"loremTopic/light/12/set",
		"other/loremTopic/cover/12/set",
	} {
		assert.Empty(t, r.FindStringSubmatch(topic), topic)
	}
}

func TestCommandTopics(t *testing.T) {

	assert.Equal(t, map[string]byte{
		"becker/cover/+/set":          1,
		"becker/cover/+/set_position": 1,
		"becker/light/+/set":          1,
	}, testClient().commandTopics())
}

func TestLightCommandParse(t *testing.T) {

	r := lightCommandExtractor("loremTopic")

	matches := r.FindStringSubmatch("loremTopic/light/3/set")
	require.Len(t, matches, 2)
	assert.Equal(t, "3", matches[1])

	assert.Empty(t, r.FindStringSubmatch("loremTopic/light/3/brightness"))
}

func TestParseCommand(t *testing.T) {

	assert := assert.New(t)
	client := testClient()

	cmd, err := client.parseCommand("becker/cover/12/set", "close")
	require.NoError(t, err)
	assert.Equal(&ParsedMQTTCommand{Component: "cover", ObjectId: "12", Command: MQTT_COMMAND_SET, Payload: MQTT_PAYLOAD_CLOSE}, cmd)

	cmd, err = client.parseCommand("becker/cover/12/set_position", "30")
	require.NoError(t, err)
	assert.Equal(&ParsedMQTTCommand{Component: "cover", ObjectId: "12", Command: MQTT_COMMAND_SET_POSITION, Payload: "30"}, cmd)

	cmd, err = client.parseCommand("becker/light/3/set", "ON")
	require.NoError(t, err)
	assert.Equal(&ParsedMQTTCommand{Component: "light", ObjectId: "3", Command: MQTT_COMMAND_SET, Payload: MQTT_PAYLOAD_ON}, cmd)
}

func TestParseCommandFail(t *testing.T) {

	client := testClient()

	_, err := client.parseCommand("becker/cover/12/set", "TILT")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = client.parseCommand("becker/cover/12/set_position", "130")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = client.parseCommand("becker/cover/12/set_position", "half")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = client.parseCommand("becker/light/3/set", "50")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = client.parseCommand("becker/sensor/30-sun/state", "12.3")
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)
	client := testClient()

	assert.Equal("becker/bridge/state", client.BridgeStateTopic())
	assert.Equal("becker/cover/12/state", client.CoverStateTopic("12"))
	assert.Equal("becker/cover/12/position", client.CoverPositionTopic("12"))
	assert.Equal("becker/cover/12/set", client.CoverCommandTopic("12"))
	assert.Equal("becker/cover/12/set_position", client.CoverSetPositionTopic("12"))
	assert.Equal("becker/light/3/state", client.LightStateTopic("3"))
	assert.Equal("becker/light/3/brightness", client.LightBrightnessTopic("3"))
	assert.Equal("becker/sensor/30-sun/state", client.SensorStateTopic("30-sun"))
	assert.Equal("homeassistant/cover/becker_12/12/config", client.HADiscoveryTopic("cover", "becker_12", "12"))
}
