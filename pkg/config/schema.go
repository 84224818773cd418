package config

// Schema is the JSON schema for validating configuration files
const Schema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "type": "object",
    "additionalProperties": false,
    "properties": {
        "artifact_path": {
            "type": "string",
            "description": "Expected path of the release APK"
        },
        "project_dir": {
            "type": "string",
            "description": "Flutter project the build commands run in"
        },
        "env_file": {
            "type": "string",
            "description": "KEY=VALUE file holding storage and API secrets"
        },
        "product": {
            "type": "string",
            "pattern": "^[a-zA-Z0-9_.-]+$"
        },
        "platform": {
            "type": "string",
            "enum": ["android", "ios"]
        },
        "key_prefix": {
            "type": "string"
        },
        "storage_provider": {
            "type": "string",
            "enum": ["s3", "backblaze", "ssh", "local"]
        },
        "sink": {
            "type": "string",
            "enum": ["publish", "template"]
        },
        "build_commands": {
            "type": "array",
            "items": {
                "type": "array",
                "minItems": 1,
                "items": {"type": "string"}
            }
        },
        "template": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
                "path": {"type": "string"},
                "marker": {"type": "string", "minLength": 1},
                "link_text": {"type": "string", "minLength": 1},
                "repo_dir": {"type": "string"},
                "commit_message": {"type": "string"}
            }
        },
        "publish": {
            "type": "object",
            "additionalProperties": false,
            "properties": {
                "timeout_seconds": {
                    "type": "integer",
                    "minimum": 1
                }
            }
        },
        "log_level": {
            "type": "string",
            "enum": ["debug", "info", "warn", "error"]
        },
        "log_format": {
            "type": "string",
            "enum": ["json", "console"]
        }
    }
}`
