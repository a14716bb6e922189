package samlaunch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLaunchJSON = `{
    "version": "0.2.0",
    "configurations": [
        {
            "type": "aws-sam",
            "request": "direct-invoke",
            "name": "hello (template)",
            "invokeTarget": {
                "target": "template",
                "templatePath": "./template.yaml",
                "logicalId": "HelloWorldFunction"
            },
            "lambda": {
                "runtime": "python3.13",
                "memoryMb": 512,
                "environmentVariables": {"STAGE": "dev"},
                "payload": {"json": {"key": "value"}}
            },
            "aws": {
                "credentials": "profile:default",
                "region": "us-west-2"
            },
            "sam": {
                "parameters": {"HandlerParam": "app.handler"}
            }
        },
        {
            "type": "aws-sam",
            "request": "direct-invoke",
            "name": "hello (code)",
            "noDebug": true,
            "invokeTarget": {
                "target": "code",
                "projectRoot": "hello_world",
                "lambdaHandler": "app.lambda_handler"
            },
            "lambda": {
                "runtime": "nodejs22.x",
                "pathMappings": [
                    {"localRoot": "/work/app", "remoteRoot": "/var/task"}
                ]
            }
        }
    ]
}`

func TestLaunchConfigFile_Unmarshal(t *testing.T) {
	var file LaunchConfigFile
	require.NoError(t, json.Unmarshal([]byte(sampleLaunchJSON), &file))
	require.Len(t, file.Configurations, 2)

	tmpl := file.Configurations[0]
	assert.Equal(t, "aws-sam", tmpl.Type)
	assert.Equal(t, RequestDirectInvoke, tmpl.Request)
	assert.Equal(t, TargetTemplate, tmpl.Target.Target)
	assert.Equal(t, "./template.yaml", tmpl.Target.TemplatePath)
	assert.Equal(t, "HelloWorldFunction", tmpl.Target.LogicalID)
	assert.Equal(t, "python3.13", tmpl.Lambda.Runtime)
	assert.Equal(t, 512, tmpl.Lambda.MemoryMB)
	assert.Equal(t, map[string]string{"STAGE": "dev"}, tmpl.Lambda.Environment)
	assert.Equal(t, map[string]any{"key": "value"}, tmpl.Lambda.Payload.JSON)
	assert.Equal(t, "profile:default", tmpl.Aws.Credentials)
	assert.Equal(t, "us-west-2", tmpl.Aws.Region)
	assert.Equal(t, map[string]string{"HandlerParam": "app.handler"}, tmpl.Sam.Parameters)

	code := file.Configurations[1]
	assert.Equal(t, TargetCode, code.Target.Target)
	assert.True(t, code.NoDebug)
	assert.Equal(t, "hello_world", code.Target.ProjectRoot)
	assert.Equal(t, "app.lambda_handler", code.Target.LambdaHandler)
	require.Len(t, code.Lambda.PathMappings, 1)
	assert.Equal(t, "/var/task", code.Lambda.PathMappings[0].RemoteRoot)
}

func TestLaunchDescriptor_CredentialsNeverSerialized(t *testing.T) {
	desc := LaunchDescriptor{
		Type:    "python",
		Request: "attach",
		Credentials: Credentials{
			AccessKeyID:     "AKIASECRET",
			SecretAccessKey: "verysecret",
		},
	}

	data, err := json.Marshal(desc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "AKIASECRET")
	assert.NotContains(t, string(data), "verysecret")
}

func TestLaunchDescriptor_PortAlwaysPresent(t *testing.T) {
	// Port -1 is the wire signal for a noDebug run and must survive
	// serialization even though zero-valued optional fields are dropped.
	desc := LaunchDescriptor{Type: "node", Request: "launch", Port: -1}

	data, err := json.Marshal(desc)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(-1), got["port"])
	assert.NotContains(t, got, "debugPort")
}
