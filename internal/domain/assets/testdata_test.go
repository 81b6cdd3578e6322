package assets

const (
	menuGUID  = "a1b2c3d4e5f60718293a4b5c6d7e8f90"
	enemyGUID = "0f0e0d0c0b0a09080706050403020100"
)

// menuScene is a trimmed Unity 2022 scene: a Canvas button whose onClick
// calls Menu.OnPlayClicked and GameObject.SetActive.
const menuScene = `%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!29 &1
OcclusionCullingSettings:
  m_ObjectHideFlags: 0
--- !u!1 &100
GameObject:
  m_ObjectHideFlags: 0
  serializedVersion: 6
  m_Component:
  - component: {fileID: 101}
  - component: {fileID: 102}
  m_Layer: 5
  m_Name: PlayButton
  m_IsActive: 1
--- !u!114 &101
MonoBehaviour:
  m_ObjectHideFlags: 0
  m_GameObject: {fileID: 100}
  m_Enabled: 1
  m_Script: {fileID: 11500000, guid: 4e29b1a8efbd4b44bb3f3716e73f07ff, type: 3}
  m_Name: 
  m_OnClick:
    m_PersistentCalls:
      m_Calls:
      - m_Target: {fileID: 201}
        m_TargetAssemblyTypeName: Game.UI.Menu, Assembly-CSharp
        m_MethodName: OnPlayClicked
        m_Mode: 1
        m_Arguments:
          m_ObjectArgument: {fileID: 0}
          m_ObjectArgumentAssemblyTypeName: UnityEngine.Object, UnityEngine
          m_IntArgument: 0
          m_StringArgument: 
        m_CallState: 2
      - m_Target: {fileID: 300}
        m_TargetAssemblyTypeName: UnityEngine.GameObject, UnityEngine
        m_MethodName: SetActive
        m_Mode: 6
        m_Arguments:
          m_BoolArgument: 0
        m_CallState: 2
--- !u!1 &200
GameObject:
  m_Name: MenuRoot
--- !u!114 &201
MonoBehaviour:
  m_GameObject: {fileID: 200}
  m_Enabled: 1
  m_Script: {fileID: 11500000, guid: A1B2C3D4E5F60718293A4B5C6D7E8F90, type: 3}
  m_Name: 
  onQuit:
    m_PersistentCalls:
      m_Calls:
      - m_Target: {fileID: 201}
        m_TargetAssemblyTypeName: 
        m_MethodName: 
        m_Mode: 1
--- !u!1 &300
GameObject:
  m_Name: Panel
--- !u!1001 &400
PrefabInstance:
  m_SourcePrefab: {fileID: 100100000, guid: 99999999999999999999999999999999, type: 3}
--- !u!114 &401 stripped
MonoBehaviour:
  m_CorrespondingSourceObject: {fileID: 11400000, guid: 99999999999999999999999999999999, type: 3}
`

const enemyPrefab = `%YAML 1.1
%TAG !u! tag:unity3d.com,2011:
--- !u!1 &1
GameObject:
  m_Name: Enemy
--- !u!114 &2
MonoBehaviour:
  m_GameObject: {fileID: 1}
  m_Script: {fileID: 11500000, guid: 0f0e0d0c0b0a09080706050403020100, type: 3}
--- !u!114 &3
MonoBehaviour:
  m_GameObject: {fileID: 1}
  m_Script: {fileID: 11500000, guid: a1b2c3d4e5f60718293a4b5c6d7e8f90, type: 3}
  onDeath:
    m_PersistentCalls:
      m_Calls:
      - m_Target: {fileID: 2}
        m_TargetAssemblyTypeName: Enemy, Assembly-CSharp
        m_MethodName: Explode
`

const menuMeta = `fileFormatVersion: 2
guid: a1b2c3d4e5f60718293a4b5c6d7e8f90
MonoImporter:
  externalObjects: {}
  serializedVersion: 2
  defaultReferences: []
  executionOrder: 0
  icon: {instanceID: 0}
`
