package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/tidwall/gjson"
)

type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func NewSecretsClient(ctx context.Context) (*secretsmanager.Client, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// GetSecret reads a secret string. If field is set the secret is treated as a
// JSON document and only that field is returned.
func GetSecret(ctx context.Context, client SecretsAPI, secretId string, field string) (string, error) {
	output, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretId),
	})
	if err != nil {
		return "", err
	}
	value := aws.ToString(output.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %s has no string value", secretId)
	}
	if field == "" {
		return value, nil
	}
	if !gjson.Valid(value) {
		return "", fmt.Errorf("secret %s is not a JSON document", secretId)
	}
	result := gjson.Get(value, field)
	if !result.Exists() || result.String() == "" {
		return "", fmt.Errorf("secret %s has no field %q", secretId, field)
	}
	return result.String(), nil
}
